// Package gesture turns per-tick hand tracking results into debounced,
// confidence-scored gesture events.
package gesture

import "time"

// Sensitivity bounds. Values outside the range are clamped at load time.
const (
	MinSensitivity = 0.1
	MaxSensitivity = 1.0
)

// KindSettings holds the per-gesture arbitration knobs.
type KindSettings struct {
	Enabled             bool
	ConfidenceThreshold float64
}

// Thresholds holds the posture-derivation constants of the frame
// adapter. They are tunable: the defaults were calibrated against live
// MediaPipe output, not derived analytically.
type Thresholds struct {
	// FingerExtend is the minimum tip-to-MCP distance, in palm-scale
	// units, for a finger to count as extended.
	FingerExtend float64

	// ThumbExtend is the minimum thumb-tip-to-pinky-MCP distance, in
	// palm-scale units, for the thumb to count as extended. The thumb
	// has no usable tip-to-MCP axis, so it is measured across the palm.
	ThumbExtend float64

	// PalmTolerance is the minimum magnitude of the normalized palm
	// normal's camera-axis component for the palm to count as facing
	// the camera.
	PalmTolerance float64
}

// DefaultThresholds returns the calibrated posture thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FingerExtend:  0.7,
		ThumbExtend:   1.2,
		PalmTolerance: 0.1,
	}
}

// Settings configures a detection session. It is read once at session
// start; live config reloads take effect on the next session.
type Settings struct {
	Wave   KindSettings
	PalmUp KindSettings

	// Sensitivity scales candidate confidence globally (0.1-1.0).
	Sensitivity float64

	// MinReversals is the number of horizontal direction reversals
	// required for a wave.
	MinReversals int

	// MinAmplitude is the minimum centroid-x displacement, in
	// normalized image units, between consecutive reversals.
	MinAmplitude float64

	// MinHoldDuration is how long the palm-up posture must be held
	// continuously.
	MinHoldDuration time.Duration

	// Cooldown is the minimum interval between two emissions of the
	// same gesture kind.
	Cooldown time.Duration

	// Horizon is the maximum age of frames retained in the window.
	Horizon time.Duration

	// StaleAfter is the maximum tolerated gap between consecutive
	// frames before in-progress gesture evidence is discarded.
	StaleAfter time.Duration

	Thresholds Thresholds
}

// DefaultSettings returns the settings used when no configuration is
// supplied.
func DefaultSettings() Settings {
	return Settings{
		Wave:            KindSettings{Enabled: true, ConfidenceThreshold: 0.8},
		PalmUp:          KindSettings{Enabled: true, ConfidenceThreshold: 0.7},
		Sensitivity:     1.0,
		MinReversals:    2,
		MinAmplitude:    0.04,
		MinHoldDuration: 1500 * time.Millisecond,
		Cooldown:        2 * time.Second,
		Horizon:         3 * time.Second,
		StaleAfter:      700 * time.Millisecond,
		Thresholds:      DefaultThresholds(),
	}
}

// Clamped returns a copy with every out-of-range value pulled to the
// nearest documented bound. Out-of-range configuration is not a runtime
// fault.
func (s Settings) Clamped() Settings {
	out := s

	out.Sensitivity = clamp(out.Sensitivity, MinSensitivity, MaxSensitivity)
	out.Wave.ConfidenceThreshold = clamp(out.Wave.ConfidenceThreshold, 0, 1)
	out.PalmUp.ConfidenceThreshold = clamp(out.PalmUp.ConfidenceThreshold, 0, 1)

	if out.MinReversals < 1 {
		out.MinReversals = 1
	}
	if out.MinAmplitude <= 0 {
		out.MinAmplitude = DefaultSettings().MinAmplitude
	}
	if out.MinHoldDuration <= 0 {
		out.MinHoldDuration = DefaultSettings().MinHoldDuration
	}
	if out.Cooldown < 0 {
		out.Cooldown = 0
	}
	if out.Horizon <= 0 {
		out.Horizon = DefaultSettings().Horizon
	}
	if out.StaleAfter <= 0 {
		out.StaleAfter = DefaultSettings().StaleAfter
	}
	if out.Thresholds.FingerExtend <= 0 {
		out.Thresholds.FingerExtend = DefaultThresholds().FingerExtend
	}
	if out.Thresholds.ThumbExtend <= 0 {
		out.Thresholds.ThumbExtend = DefaultThresholds().ThumbExtend
	}
	out.Thresholds.PalmTolerance = clamp(out.Thresholds.PalmTolerance, 0.01, 1)

	return out
}

// sensitivityFactor maps sensitivity onto a confidence multiplier in
// [0.55, 1.0] so low sensitivity demands cleaner gestures without
// zeroing confidence outright.
func (s Settings) sensitivityFactor() float64 {
	return 0.5 + 0.5*clamp(s.Sensitivity, MinSensitivity, MaxSensitivity)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
