package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// settingsKey is the settings-table key under which the last applied
// detection settings are persisted.
const settingsKey = "detection"

// DetectionHandler exposes the detection toggle and tuning knobs.
type DetectionHandler struct {
	app   *app.App
	store *store.Store
}

// NewDetectionHandler creates a DetectionHandler.
func NewDetectionHandler(a *app.App, s *store.Store) *DetectionHandler {
	return &DetectionHandler{app: a, store: s}
}

// detectionState is the wire form of the detection settings. Durations
// are milliseconds to match the config file.
type detectionState struct {
	Enabled             bool    `json:"enabled"`
	WaveEnabled         bool    `json:"wave_enabled"`
	PalmUpEnabled       bool    `json:"palm_up_enabled"`
	Sensitivity         float64 `json:"sensitivity"`
	WaveConfidence      float64 `json:"wave_confidence"`
	PalmUpConfidence    float64 `json:"palm_up_confidence"`
	WaveMinReversals    int     `json:"wave_min_reversals"`
	WaveMinAmplitude    float64 `json:"wave_min_amplitude"`
	PalmUpMinHoldMS     int     `json:"palm_up_min_hold_ms"`
	CooldownMS          int     `json:"cooldown_ms"`
	WindowMS            int     `json:"window_ms"`
	StaleAfterMS        int     `json:"stale_after_ms"`
	FingerExtendRatio   float64 `json:"finger_extend_ratio"`
	ThumbExtendRatio    float64 `json:"thumb_extend_ratio"`
	PalmFacingTolerance float64 `json:"palm_facing_tolerance"`
}

func stateFrom(enabled bool, s gesture.Settings) detectionState {
	return detectionState{
		Enabled:             enabled,
		WaveEnabled:         s.Wave.Enabled,
		PalmUpEnabled:       s.PalmUp.Enabled,
		Sensitivity:         s.Sensitivity,
		WaveConfidence:      s.Wave.ConfidenceThreshold,
		PalmUpConfidence:    s.PalmUp.ConfidenceThreshold,
		WaveMinReversals:    s.MinReversals,
		WaveMinAmplitude:    s.MinAmplitude,
		PalmUpMinHoldMS:     int(s.MinHoldDuration / time.Millisecond),
		CooldownMS:          int(s.Cooldown / time.Millisecond),
		WindowMS:            int(s.Horizon / time.Millisecond),
		StaleAfterMS:        int(s.StaleAfter / time.Millisecond),
		FingerExtendRatio:   s.Thresholds.FingerExtend,
		ThumbExtendRatio:    s.Thresholds.ThumbExtend,
		PalmFacingTolerance: s.Thresholds.PalmTolerance,
	}
}

func (d detectionState) settings() gesture.Settings {
	return gesture.Settings{
		Wave:            gesture.KindSettings{Enabled: d.WaveEnabled, ConfidenceThreshold: d.WaveConfidence},
		PalmUp:          gesture.KindSettings{Enabled: d.PalmUpEnabled, ConfidenceThreshold: d.PalmUpConfidence},
		Sensitivity:     d.Sensitivity,
		MinReversals:    d.WaveMinReversals,
		MinAmplitude:    d.WaveMinAmplitude,
		MinHoldDuration: time.Duration(d.PalmUpMinHoldMS) * time.Millisecond,
		Cooldown:        time.Duration(d.CooldownMS) * time.Millisecond,
		Horizon:         time.Duration(d.WindowMS) * time.Millisecond,
		StaleAfter:      time.Duration(d.StaleAfterMS) * time.Millisecond,
		Thresholds: gesture.Thresholds{
			FingerExtend:  d.FingerExtendRatio,
			ThumbExtend:   d.ThumbExtendRatio,
			PalmTolerance: d.PalmFacingTolerance,
		},
	}
}

// ServeHTTP routes /api/detection.
func (h *DetectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DetectionHandler) get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stateFrom(h.app.IsEnabled(), h.app.Settings()))
}

func (h *DetectionHandler) update(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(h.app.IsEnabled(), h.app.Settings())
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	settings := state.settings().Clamped()
	h.app.UpdateSettings(settings)

	// A settings change restarts the detection session so the new
	// values take effect now rather than on the next enable.
	h.app.SetEnabled(false)
	h.app.SetEnabled(state.Enabled)

	if h.store != nil {
		h.persist(settings, state.Enabled)
	}

	writeJSON(w, http.StatusOK, stateFrom(state.Enabled, settings))
}

// persist keeps the last applied settings across restarts. A write
// failure is not worth failing the request over.
func (h *DetectionHandler) persist(s gesture.Settings, enabled bool) {
	raw, err := json.Marshal(stateFrom(enabled, s))
	if err != nil {
		return
	}
	h.store.Settings().Set(settingsKey, string(raw))
}
