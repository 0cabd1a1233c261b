package gesture

import "math"

// palmMinFingers is how many fingers must be extended for a palm-up
// frame. Four tolerates an uncertain thumb.
const palmMinFingers = 4

// jitterRef is the centroid standard deviation, in normalized image
// units, at which posture stability bottoms out.
const jitterRef = 0.05

// PalmUpRecognizer detects a sustained, stable palm-facing posture held
// for a minimum duration.
type PalmUpRecognizer struct {
	settings Settings
	hold     Continuity
}

// NewPalmUpRecognizer creates a palm-up recognizer with the given
// settings.
func NewPalmUpRecognizer(settings Settings) *PalmUpRecognizer {
	return &PalmUpRecognizer{settings: settings}
}

// Precondition reports whether the frame shows the palm-up posture.
func (r *PalmUpRecognizer) Precondition(frame HandFrame) bool {
	return frame.Present && frame.PalmFacingCamera && frame.ExtendedCount() >= palmMinFingers
}

// Observe feeds one frame and returns a candidate once the posture has
// been held continuously for the minimum duration. One violating frame
// restarts the hold from scratch.
func (r *PalmUpRecognizer) Observe(frame HandFrame, window *Window) *Candidate {
	held := r.hold.Observe(r.Precondition(frame), frame.Timestamp)
	if held < r.settings.MinHoldDuration {
		return nil
	}

	return &Candidate{Kind: KindPalmUp, Confidence: r.confidence(window)}
}

// confidence blends mean tracking confidence over the hold with posture
// stability, where stability falls off with centroid jitter.
func (r *PalmUpRecognizer) confidence(window *Window) float64 {
	since := r.hold.Since()

	var n int
	var confSum, sumX, sumY, sqX, sqY float64
	for _, f := range window.Frames() {
		if !f.Present || f.Timestamp.Before(since) {
			continue
		}
		n++
		confSum += f.TrackingConfidence
		sumX += f.Centroid.X
		sumY += f.Centroid.Y
		sqX += f.Centroid.X * f.Centroid.X
		sqY += f.Centroid.Y * f.Centroid.Y
	}
	if n == 0 {
		return 0
	}

	avgConf := confSum / float64(n)

	fn := float64(n)
	varX := sqX/fn - (sumX/fn)*(sumX/fn)
	varY := sqY/fn - (sumY/fn)*(sumY/fn)
	if varX < 0 {
		varX = 0
	}
	if varY < 0 {
		varY = 0
	}
	jitter := math.Sqrt(varX + varY)
	stability := clamp(1-jitter/jitterRef, 0, 1)

	conf := 0.55*avgConf + 0.45*stability
	return clamp(conf*r.settings.sensitivityFactor(), 0, 1)
}

// HoldActive reports whether a hold is currently accumulating.
func (r *PalmUpRecognizer) HoldActive() bool {
	return r.hold.Active()
}

// Reset discards the in-progress hold.
func (r *PalmUpRecognizer) Reset() {
	r.hold.Reset()
}
