package gesture

import "time"

// Window is a time-bounded, time-ordered history of recent hand frames.
// Capacity is governed by a duration horizon, not a frame count, so
// behavior is invariant to frame-rate changes.
type Window struct {
	horizon    time.Duration
	staleAfter time.Duration
	frames     []HandFrame
}

// NewWindow creates a window retaining frames no older than horizon.
// A gap between consecutive pushes larger than staleAfter clears the
// window: a tracking gap invalidates in-progress gesture evidence.
func NewWindow(horizon, staleAfter time.Duration) *Window {
	return &Window{
		horizon:    horizon,
		staleAfter: staleAfter,
	}
}

// Push appends a frame and evicts everything older than the horizon,
// oldest first. It reports whether the window was restarted because the
// gap since the previous frame exceeded the stale threshold.
func (w *Window) Push(frame HandFrame) bool {
	restarted := false
	if n := len(w.frames); n > 0 {
		if frame.Timestamp.Sub(w.frames[n-1].Timestamp) > w.staleAfter {
			w.frames = w.frames[:0]
			restarted = true
		}
	}

	w.frames = append(w.frames, frame)

	cutoff := frame.Timestamp.Add(-w.horizon)
	evict := 0
	for evict < len(w.frames) && w.frames[evict].Timestamp.Before(cutoff) {
		evict++
	}
	if evict > 0 {
		w.frames = append(w.frames[:0], w.frames[evict:]...)
	}

	return restarted
}

// Frames returns the retained frames, oldest first. The slice is live
// until the next Push.
func (w *Window) Frames() []HandFrame {
	return w.frames
}

// Len returns the number of retained frames.
func (w *Window) Len() int {
	return len(w.frames)
}

// DurationCovered returns the elapsed time between the oldest and
// newest retained frame.
func (w *Window) DurationCovered() time.Duration {
	if len(w.frames) < 2 {
		return 0
	}
	return w.frames[len(w.frames)-1].Timestamp.Sub(w.frames[0].Timestamp)
}

// Clear discards all retained frames.
func (w *Window) Clear() {
	w.frames = w.frames[:0]
}
