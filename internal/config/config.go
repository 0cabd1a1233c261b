// Package config defines the process configuration and its loading
// pipeline. Values layer defaults, an optional YAML file, and MUDRA_
// environment variables; detection settings are clamped rather than
// rejected when out of range.
package config

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Config is the full process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level"`

	// Addr is the HTTP listen address for the status API.
	Addr string `koanf:"addr" json:"addr"`

	// DataDir holds the SQLite database and tracker assets.
	// Defaults to ~/.mudra.
	DataDir string `koanf:"data_dir" json:"data_dir"`

	// CameraID selects the capture device.
	CameraID int `koanf:"camera_id" json:"camera_id"`

	// ActiveFPS and IdleFPS bound the capture rate. The pipeline runs
	// at ActiveFPS while motion or a hand is present and decays to
	// IdleFPS otherwise.
	ActiveFPS int `koanf:"active_fps" json:"active_fps"`
	IdleFPS   int `koanf:"idle_fps" json:"idle_fps"`

	// Tray enables the system tray icon.
	Tray bool `koanf:"tray" json:"tray"`

	Detection Detection `koanf:"detection" json:"detection"`
	Tracker   Tracker   `koanf:"tracker" json:"tracker"`
	Triggers  Triggers  `koanf:"triggers" json:"triggers"`
}

// Detection holds the gesture recognition knobs. Field semantics match
// gesture.Settings; durations are expressed in milliseconds in YAML and
// env form.
type Detection struct {
	WaveEnabled         bool    `koanf:"wave_enabled" json:"wave_enabled"`
	WaveConfidence      float64 `koanf:"wave_confidence" json:"wave_confidence"`
	PalmUpEnabled       bool    `koanf:"palm_up_enabled" json:"palm_up_enabled"`
	PalmUpConfidence    float64 `koanf:"palm_up_confidence" json:"palm_up_confidence"`
	Sensitivity         float64 `koanf:"sensitivity" json:"sensitivity"`
	MinReversals        int     `koanf:"min_reversals" json:"min_reversals"`
	MinAmplitude        float64 `koanf:"min_amplitude" json:"min_amplitude"`
	MinHoldDurationMS   int     `koanf:"min_hold_duration_ms" json:"min_hold_duration_ms"`
	CooldownMS          int     `koanf:"cooldown_ms" json:"cooldown_ms"`
	HorizonMS           int     `koanf:"horizon_ms" json:"horizon_ms"`
	StaleAfterMS        int     `koanf:"stale_after_ms" json:"stale_after_ms"`
	FingerExtendRatio   float64 `koanf:"finger_extend_ratio" json:"finger_extend_ratio"`
	ThumbExtendRatio    float64 `koanf:"thumb_extend_ratio" json:"thumb_extend_ratio"`
	PalmFacingTolerance float64 `koanf:"palm_facing_tolerance" json:"palm_facing_tolerance"`
}

// Tracker configures the hand tracking subprocess.
type Tracker struct {
	MinConfidence   float64 `koanf:"min_confidence" json:"min_confidence"`
	MinTrackingConf float64 `koanf:"min_tracking_confidence" json:"min_tracking_confidence"`
}

// Triggers configures the actions fired on detected gestures.
type Triggers struct {
	// Wave and PalmUp bind each gesture to a trigger or a
	// comma-separated chain run in order. Recognized names:
	// screenshot, assistant, speak, none. "screenshot,assistant"
	// captures the screen and then asks the assistant about it.
	Wave   string `koanf:"wave" json:"wave"`
	PalmUp string `koanf:"palm_up" json:"palm_up"`

	// TimeoutMS bounds a single trigger execution.
	TimeoutMS int `koanf:"timeout_ms" json:"timeout_ms"`

	// AssistantModel selects the model for the assistant trigger. The
	// API key comes from OPENAI_API_KEY, never from config.
	AssistantModel string `koanf:"assistant_model" json:"assistant_model"`
}

// New returns the default configuration.
func New() *Config {
	d := gesture.DefaultSettings()
	th := d.Thresholds
	return &Config{
		LogLevel:  "info",
		Addr:      ":8080",
		CameraID:  0,
		ActiveFPS: 15,
		IdleFPS:   2,
		Tray:      true,
		Detection: Detection{
			WaveEnabled:         d.Wave.Enabled,
			WaveConfidence:      d.Wave.ConfidenceThreshold,
			PalmUpEnabled:       d.PalmUp.Enabled,
			PalmUpConfidence:    d.PalmUp.ConfidenceThreshold,
			Sensitivity:         d.Sensitivity,
			MinReversals:        d.MinReversals,
			MinAmplitude:        d.MinAmplitude,
			MinHoldDurationMS:   int(d.MinHoldDuration / time.Millisecond),
			CooldownMS:          int(d.Cooldown / time.Millisecond),
			HorizonMS:           int(d.Horizon / time.Millisecond),
			StaleAfterMS:        int(d.StaleAfter / time.Millisecond),
			FingerExtendRatio:   th.FingerExtend,
			ThumbExtendRatio:    th.ThumbExtend,
			PalmFacingTolerance: th.PalmTolerance,
		},
		Tracker: Tracker{
			MinConfidence:   0.7,
			MinTrackingConf: 0.5,
		},
		Triggers: Triggers{
			Wave:           "assistant",
			PalmUp:         "screenshot,assistant",
			TimeoutMS:      10_000,
			AssistantModel: "gpt-4o-mini",
		},
	}
}

// GestureSettings converts the detection section to session settings.
// Out-of-range values survive the conversion; the session clamps them.
func (c *Config) GestureSettings() gesture.Settings {
	return gesture.Settings{
		Wave: gesture.KindSettings{
			Enabled:             c.Detection.WaveEnabled,
			ConfidenceThreshold: c.Detection.WaveConfidence,
		},
		PalmUp: gesture.KindSettings{
			Enabled:             c.Detection.PalmUpEnabled,
			ConfidenceThreshold: c.Detection.PalmUpConfidence,
		},
		Sensitivity:     c.Detection.Sensitivity,
		MinReversals:    c.Detection.MinReversals,
		MinAmplitude:    c.Detection.MinAmplitude,
		MinHoldDuration: time.Duration(c.Detection.MinHoldDurationMS) * time.Millisecond,
		Cooldown:        time.Duration(c.Detection.CooldownMS) * time.Millisecond,
		Horizon:         time.Duration(c.Detection.HorizonMS) * time.Millisecond,
		StaleAfter:      time.Duration(c.Detection.StaleAfterMS) * time.Millisecond,
		Thresholds: gesture.Thresholds{
			FingerExtend:  c.Detection.FingerExtendRatio,
			ThumbExtend:   c.Detection.ThumbExtendRatio,
			PalmTolerance: c.Detection.PalmFacingTolerance,
		},
	}
}
