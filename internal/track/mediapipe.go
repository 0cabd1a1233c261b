package track

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/metrics"
)

// mediaPipeIdleShutdown is how long the Python service may sit unused
// before it is stopped to release memory.
const mediaPipeIdleShutdown = 30 * time.Second

// MediaPipeTracker implements Tracker using a Python MediaPipe subprocess.
// The protocol is length-prefixed JPEG frames on stdin and one JSON line
// per frame on stdout.
type MediaPipeTracker struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeTracker creates a new MediaPipe tracker.
// The Python process is started lazily on first use.
func NewMediaPipeTracker(config Config) (*MediaPipeTracker, error) {
	if findTrackerScript() == "" {
		return nil, fmt.Errorf("hand_tracker_service.py not found")
	}
	return &MediaPipeTracker{config: config}, nil
}

// Track analyzes a frame and returns the best-scoring hand, or a result
// with Hand nil when nothing is detected.
func (t *MediaPipeTracker) Track(frame *gocv.Mat, ts time.Time) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := Result{Timestamp: ts}

	if err := t.ensureStarted(); err != nil {
		return res, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return res, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := t.stdin.Write(length); err != nil {
		t.restart()
		return res, fmt.Errorf("write length: %w", err)
	}
	if _, err := t.stdin.Write(data); err != nil {
		t.restart()
		return res, fmt.Errorf("write data: %w", err)
	}

	line, err := t.stdout.ReadString('\n')
	if err != nil {
		t.restart()
		return res, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return res, fmt.Errorf("parse response: %w", err)
	}

	// Single-hand core: keep only the highest-scoring detection that
	// clears the confidence floor.
	best := -1
	for i, h := range response.Hands {
		if h.Score < t.config.MinConfidence {
			continue
		}
		if best < 0 || h.Score > response.Hands[best].Score {
			best = i
		}
	}
	if best >= 0 {
		hand := response.Hands[best].toHandLandmarks()
		res.Hand = &hand
	}

	t.resetIdleTimer()

	return res, nil
}

// Close shuts down the Python process.
func (t *MediaPipeTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shutdown()
}

func (t *MediaPipeTracker) ensureStarted() error {
	if t.started {
		return nil
	}

	scriptPath := findTrackerScript()
	if scriptPath == "" {
		return fmt.Errorf("hand_tracker_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	t.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	t.cmd.Stderr = os.Stderr

	if err := t.cmd.Start(); err != nil {
		return fmt.Errorf("start tracker service: %w", err)
	}

	t.stdin = stdin
	t.stdout = bufio.NewReader(stdout)
	t.started = true

	return nil
}

func (t *MediaPipeTracker) shutdown() error {
	if !t.started {
		return nil
	}

	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}

	if t.stdin != nil {
		t.stdin.Close()
	}

	err := t.cmd.Wait()
	t.started = false
	t.cmd = nil
	t.stdin = nil
	t.stdout = nil

	return err
}

// restart tears the subprocess down after a pipe failure so the next
// Track call starts a fresh one. Caller holds the mutex.
func (t *MediaPipeTracker) restart() {
	t.shutdown()
	metrics.RecordTrackerRestart()
}

func (t *MediaPipeTracker) resetIdleTimer() {
	if t.idleTimer != nil {
		t.idleTimer.Stop()
	}
	t.idleTimer = time.AfterFunc(mediaPipeIdleShutdown, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.shutdown()
	})
}

// findTrackerScript locates the Python tracking service in common
// install locations.
func findTrackerScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/hand_tracker_service.py",
		"../scripts/hand_tracker_service.py",
		filepath.Join(execDir, "scripts/hand_tracker_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/hand_tracker_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand is the per-hand JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}

	return lm
}
