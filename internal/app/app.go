// Package app wires the capture, tracking, recognition, and trigger
// layers into the running detection pipeline.
package app

import (
	"context"
	"sync"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/track"
	"github.com/ayusman/mudra/internal/trigger"
	"github.com/ayusman/mudra/pkg/logger"
)

// Pipeline timing defaults.
const (
	// defaultMotionThreshold is the changed-pixel percentage that
	// counts as motion.
	defaultMotionThreshold = 1.0

	// idleTimeoutMS is how long without motion before dropping back to
	// the idle frame rate.
	idleTimeoutMS = 2000
)

// Config holds the application's collaborators and tuning.
type Config struct {
	Store      *store.Store
	Tracker    track.Tracker
	Camera     capture.Camera
	Dispatcher *trigger.Dispatcher
	Settings   gesture.Settings

	CameraID     int
	ActiveFPS    int
	IdleFPS      int
	MotionThresh float64
}

// App orchestrates the detection pipeline: camera frames through
// motion gating, hand tracking, gesture recognition, and triggers.
type App struct {
	mu      sync.RWMutex
	config  Config
	camera  capture.Camera
	motion  *capture.MotionDetector
	tracker track.Tracker
	session *gesture.Session
	pending *gesture.Settings
	enabled bool
	stopCh  chan struct{}
	log     logger.Logger

	subMu sync.RWMutex
	subs  []func(store.EventRecord)
}

// New creates an App. A nil Camera or Tracker in the config gets a
// real device camera and the MediaPipe tracker respectively.
func New(config Config) *App {
	if config.MotionThresh <= 0 {
		config.MotionThresh = defaultMotionThreshold
	}
	if config.ActiveFPS < 1 {
		config.ActiveFPS = 15
	}
	if config.IdleFPS < 1 {
		config.IdleFPS = 2
	}

	log := logger.Named("app")

	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraID, config.IdleFPS)
	}

	tracker := config.Tracker
	if tracker == nil {
		if mp, err := track.NewMediaPipeTracker(track.DefaultConfig()); err == nil {
			tracker = mp
			log.Info(context.Background(), "using MediaPipe hand tracking")
		} else {
			log.Warn(context.Background(), "MediaPipe not available, using mock tracker",
				logger.Error(err))
			tracker = track.NewMockTracker()
		}
	}

	return &App{
		config:  config,
		camera:  camera,
		motion:  capture.NewMotionDetector(config.MotionThresh),
		tracker: tracker,
		session: gesture.NewSession(config.Settings),
		log:     log,
	}
}

// SetEnabled enables or disables gesture detection. Enabling starts a
// fresh detection session; pending settings updates apply here.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if enabled && !a.enabled {
		if a.pending != nil {
			a.config.Settings = *a.pending
			a.pending = nil
		}
		a.session = gesture.NewSession(a.config.Settings)
	}
	a.enabled = enabled
}

// IsEnabled reports whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// UpdateSettings stages new detection settings. They take effect when
// the next session starts; the running session keeps its settings.
func (a *App) UpdateSettings(s gesture.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = &s
}

// Settings returns the settings of the current session.
func (a *App) Settings() gesture.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Settings()
}

// Subscribe registers a callback invoked for every persisted gesture
// event. Callbacks must not block.
func (a *App) Subscribe(fn func(store.EventRecord)) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	a.subs = append(a.subs, fn)
}

func (a *App) notify(rec store.EventRecord) {
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	for _, fn := range a.subs {
		fn(rec)
	}
}

// Start opens the camera and launches the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	a.log.Info(context.Background(), "detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera and tracker.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	ctx := context.Background()
	if err := a.camera.Close(); err != nil {
		a.log.Error(ctx, "closing camera", logger.Error(err))
	}
	a.motion.Close()
	if a.tracker != nil {
		if err := a.tracker.Close(); err != nil {
			a.log.Error(ctx, "closing tracker", logger.Error(err))
		}
	}

	a.log.Info(ctx, "detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Tracker returns the hand tracker.
func (a *App) Tracker() track.Tracker {
	return a.tracker
}
