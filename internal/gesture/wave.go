package gesture

import (
	"math"
	"time"
)

// waveMinFingers is how many of the five fingers must be extended for a
// frame to count toward a wave.
const waveMinFingers = 3

// reversal is one recorded horizontal direction change.
type reversal struct {
	at        time.Time
	amplitude float64
}

// WaveRecognizer detects repeated horizontal direction reversals of the
// hand centroid while the fingers are extended.
type WaveRecognizer struct {
	settings Settings

	havePrev  bool
	prevX     float64
	dir       int     // sign of the last inter-frame movement
	anchorX   float64 // centroid x at the previous reversal
	reversals []reversal
}

// NewWaveRecognizer creates a wave recognizer with the given settings.
func NewWaveRecognizer(settings Settings) *WaveRecognizer {
	return &WaveRecognizer{settings: settings}
}

// Precondition reports whether the frame is admissible wave evidence.
func (r *WaveRecognizer) Precondition(frame HandFrame) bool {
	return frame.Present && frame.ExtendedCount() >= waveMinFingers
}

// Observe feeds one frame and returns a candidate when enough reversals
// have accumulated inside the window. A frame that breaks the
// precondition discards all progress: a wave cannot be stitched together
// from two unrelated attempts.
func (r *WaveRecognizer) Observe(frame HandFrame, window *Window) *Candidate {
	if !r.Precondition(frame) {
		r.Reset()
		return nil
	}

	// Reversals age out with the window.
	cutoff := frame.Timestamp.Add(-r.settings.Horizon)
	drop := 0
	for drop < len(r.reversals) && r.reversals[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		r.reversals = append(r.reversals[:0], r.reversals[drop:]...)
	}

	x := frame.Centroid.X

	if !r.havePrev {
		r.havePrev = true
		r.prevX = x
		r.anchorX = x
		return nil
	}

	if dx := x - r.prevX; dx != 0 {
		dir := 1
		if dx < 0 {
			dir = -1
		}
		if r.dir != 0 && dir != r.dir {
			// Direction flipped at prevX. Record it only when the
			// sweep since the last reversal is wide enough to rule
			// out jitter.
			amp := math.Abs(r.prevX - r.anchorX)
			if amp >= r.settings.MinAmplitude {
				r.reversals = append(r.reversals, reversal{at: frame.Timestamp, amplitude: amp})
				r.anchorX = r.prevX
			}
		}
		r.dir = dir
	}
	r.prevX = x

	if len(r.reversals) < r.settings.MinReversals {
		return nil
	}

	return &Candidate{Kind: KindWave, Confidence: r.confidence(window)}
}

// confidence grows with surplus reversals, sweep amplitude, and the
// fraction of in-window frames that kept the fingers extended.
func (r *WaveRecognizer) confidence(window *Window) float64 {
	extra := len(r.reversals) - r.settings.MinReversals
	if extra > 3 {
		extra = 3
	}

	var ampSum float64
	for _, rev := range r.reversals {
		ampSum += rev.amplitude
	}
	avgAmp := ampSum / float64(len(r.reversals))
	ampScore := clamp(avgAmp/(4*r.settings.MinAmplitude), 0, 1)

	coverage := 1.0
	if frames := window.Frames(); len(frames) > 0 {
		ok := 0
		for _, f := range frames {
			if r.Precondition(f) {
				ok++
			}
		}
		coverage = float64(ok) / float64(len(frames))
	}

	conf := 0.74 + 0.06*float64(extra) + 0.10*ampScore + 0.10*coverage
	return clamp(conf*r.settings.sensitivityFactor(), 0, 1)
}

// Reversals returns the number of reversals currently on record.
func (r *WaveRecognizer) Reversals() int {
	return len(r.reversals)
}

// Reset discards all accumulated reversal evidence.
func (r *WaveRecognizer) Reset() {
	r.havePrev = false
	r.prevX = 0
	r.dir = 0
	r.anchorX = 0
	r.reversals = r.reversals[:0]
}
