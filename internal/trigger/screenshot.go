package trigger

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Screenshot captures the full screen to a timestamped file using the
// platform screenshot tool: screencapture on macOS, gnome-screenshot or
// scrot on Linux.
type Screenshot struct {
	mu       sync.Mutex
	dir      string
	lastPath string
}

// NewScreenshot creates the trigger writing into dir, creating it if
// needed.
func NewScreenshot(dir string) (*Screenshot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot directory: %w", err)
	}
	return &Screenshot{dir: dir}, nil
}

func (s *Screenshot) Name() string { return "screenshot" }

func (s *Screenshot) Fire(ctx context.Context, ev *gesture.Event) error {
	path := filepath.Join(s.dir,
		fmt.Sprintf("screen_%s.png", ev.Timestamp.Format("20060102_150405")))

	name, args, err := screenshotCommand(path)
	if err != nil {
		return err
	}
	if _, err := runCommand(ctx, name, args...); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastPath = path
	s.mu.Unlock()
	return nil
}

// LastPath returns the path of the most recent capture, or empty if
// none succeeded yet.
func (s *Screenshot) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPath
}

// CleanOlderThan removes captures older than maxAge and returns how
// many were deleted.
func (s *Screenshot) CleanOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

func screenshotCommand(path string) (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "screencapture", []string{"-x", path}, nil
	case "linux":
		if _, err := exec.LookPath("gnome-screenshot"); err == nil {
			return "gnome-screenshot", []string{"-f", path}, nil
		}
		if _, err := exec.LookPath("scrot"); err == nil {
			return "scrot", []string{path}, nil
		}
		return "", nil, fmt.Errorf("no screenshot tool found (tried gnome-screenshot, scrot)")
	default:
		return "", nil, fmt.Errorf("screenshots not supported on %s", runtime.GOOS)
	}
}
