package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/internal/trigger"
	"github.com/ayusman/mudra/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.Init(os.Stdout, cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("main")
	ctx := context.Background()

	dataDir, err := resolveDataDir(cfg.DataDir)
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	dispatcher := trigger.NewDispatcher(time.Duration(cfg.Triggers.TimeoutMS) * time.Millisecond)
	if err := bindTriggers(dispatcher, cfg, dataDir); err != nil {
		return err
	}

	application := app.New(app.Config{
		Store:      st,
		Dispatcher: dispatcher,
		Settings:   cfg.GestureSettings(),
		CameraID:   cfg.CameraID,
		ActiveFPS:  cfg.ActiveFPS,
		IdleFPS:    cfg.IdleFPS,
	})
	if err := application.Start(); err != nil {
		return fmt.Errorf("starting pipeline: %w", err)
	}
	defer application.Stop()
	application.SetEnabled(true)

	srv := server.New(server.Config{
		StaticDir: findWebDir(dataDir),
		Store:     st,
		App:       application,
		Camera:    application.Camera(),
		AppConfig: cfg,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server listening", logger.String("addr", cfg.Addr))
		serverErr <- srv.ListenAndServe(cfg.Addr)
	}()

	// Config file edits apply to the next detection session.
	if configPath != "" {
		watcher, err := config.Watch(configPath,
			func(c *config.Config) {
				application.UpdateSettings(c.GestureSettings())
				log.Info(ctx, "config reloaded", logger.String("path", configPath))
			},
			func(err error) {
				log.Warn(ctx, "config reload failed", logger.Error(err))
			})
		if err != nil {
			log.Warn(ctx, "config watcher unavailable", logger.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	if cfg.Tray {
		return runTray(application, cfg.Addr, serverErr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		log.Info(ctx, "shutting down", logger.String("signal", sig.String()))
		return nil
	}
}

// runTray hands the main goroutine to systray, which requires it on
// macOS. The server error channel is drained from a helper goroutine.
func runTray(application *app.App, addr string, serverErr <-chan error) error {
	t := tray.New(application.IsEnabled())
	t.OnToggle(application.SetEnabled)
	t.OnDashboard(func() { openBrowser(dashboardURL(addr)) })
	t.OnQuit(func() {})

	application.Subscribe(func(rec store.EventRecord) {
		t.SetLastEvent(rec.Kind)
	})

	go func() {
		if err := <-serverErr; err != nil {
			logger.Get().Error(context.Background(), "http server", logger.Error(err))
		}
	}()

	t.Run()
	return nil
}

func resolveDataDir(configured string) (string, error) {
	dir := configured
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".mudra")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dir, nil
}

// bindTriggers wires the configured trigger chain for each gesture
// kind. Screenshot and speaker instances are shared across chains: the
// assistant references the latest capture and reuses the voice.
func bindTriggers(d *trigger.Dispatcher, cfg *config.Config, dataDir string) error {
	waveNames := splitChain(cfg.Triggers.Wave)
	palmUpNames := splitChain(cfg.Triggers.PalmUp)
	all := append(append([]string{}, waveNames...), palmUpNames...)

	var (
		speaker *trigger.Speaker
		shot    *trigger.Screenshot
	)

	// The screenshot trigger is created up front, before any chain is
	// assembled, so an assistant in either chain sees the capture.
	if containsName(all, "screenshot") {
		s, err := trigger.NewScreenshot(filepath.Join(dataDir, "screenshots"))
		if err != nil {
			return fmt.Errorf("screenshot trigger: %w", err)
		}
		shot = s
		go shot.CleanOlderThan(30 * 24 * time.Hour)
	}
	if containsName(all, "speak") || containsName(all, "assistant") {
		speaker = trigger.NewSpeaker()
	}

	build := func(names []string) (trigger.Trigger, error) {
		var steps []trigger.Trigger
		for _, name := range names {
			switch name {
			case "screenshot":
				steps = append(steps, shot)
			case "speak":
				steps = append(steps, speaker)
			case "assistant":
				steps = append(steps, trigger.NewAssistant(cfg.Triggers.AssistantModel, speaker, shot))
			default:
				return nil, fmt.Errorf("unknown trigger %q", name)
			}
		}
		switch len(steps) {
		case 0:
			return nil, nil
		case 1:
			return steps[0], nil
		default:
			return trigger.NewChain(steps...), nil
		}
	}

	waveTrigger, err := build(waveNames)
	if err != nil {
		return err
	}
	palmUpTrigger, err := build(palmUpNames)
	if err != nil {
		return err
	}

	d.Bind(gesture.KindWave, waveTrigger)
	d.Bind(gesture.KindPalmUp, palmUpTrigger)
	return nil
}

// splitChain parses a comma-separated trigger list, dropping empty
// entries and "none".
func splitChain(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || name == "none" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func dashboardURL(addr string) string {
	if addr != "" && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

// findWebDir searches the usual locations for the dashboard assets.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
