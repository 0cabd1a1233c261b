// Package capture reads video frames from a camera device using GoCV
// and detects coarse motion to gate the expensive tracking pipeline.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Capture resolution. Tracking quality does not improve past VGA and
// the landmark model resizes its input anyway.
const (
	frameWidth  = 640
	frameHeight = 480
)

// ErrNotOpen is returned when reading from a camera that is not open.
var ErrNotOpen = errors.New("camera is not open")

// Camera is a source of video frames.
type Camera interface {
	Open() error
	Close() error

	// Read returns the next frame. The caller owns the returned Mat
	// and must Close it.
	Read() (*gocv.Mat, error)

	// SetFPS adjusts the capture rate. Used to drop to a low idle rate
	// when nothing is moving in front of the camera.
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

type device struct {
	mu       sync.Mutex
	deviceID int
	fps      int
	cap      *gocv.VideoCapture
}

// NewCamera creates a camera for the given device ID capturing at the
// given initial rate.
func NewCamera(deviceID, fps int) Camera {
	if fps < 1 {
		fps = 1
	}
	return &device{deviceID: deviceID, fps: fps}
}

func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap != nil {
		return nil
	}

	cap, err := gocv.OpenVideoCapture(d.deviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.deviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, frameWidth)
	cap.Set(gocv.VideoCaptureFrameHeight, frameHeight)
	cap.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.cap = cap
	return nil
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		return nil
	}
	err := d.cap.Close()
	d.cap = nil
	return err
}

func (d *device) Read() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		return nil, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.cap.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("read frame from camera %d", d.deviceID)
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}
	return &mat, nil
}

func (d *device) SetFPS(fps int) {
	if fps < 1 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.cap != nil {
		d.cap.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cap != nil
}
