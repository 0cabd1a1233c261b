package track

import (
	"time"

	"gocv.io/x/gocv"
)

// Result is one tracking observation: zero-or-one detected hand plus the
// capture timestamp of the frame it was derived from.
type Result struct {
	Hand      *HandLandmarks
	Timestamp time.Time
}

// Tracker is the interface for hand tracking implementations.
type Tracker interface {
	// Track analyzes a video frame and returns the tracking result for
	// this tick. Hand is nil when no hand is visible.
	Track(frame *gocv.Mat, ts time.Time) (Result, error)

	// Close releases any resources held by the tracker.
	Close() error
}

// Config holds configuration options for hand tracking.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}
