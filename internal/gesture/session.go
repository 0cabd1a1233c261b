package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/track"
)

// Session is the per-hand detection state for one capture session. It is
// owned by the caller and passed every tick's tracking result; multiple
// sessions are fully independent.
//
// Process and Reset are safe for concurrent use, but ticks are strictly
// serialized internally: recognizer state and the cooldown ledger are
// mutated non-atomically across the arbitration sequence.
type Session struct {
	mu       sync.Mutex
	settings Settings
	window   *Window
	wave     *WaveRecognizer
	palm     *PalmUpRecognizer
	arbiter  *Arbiter

	lastPresent time.Time
}

// NewSession creates a session. Out-of-range settings are clamped.
func NewSession(settings Settings) *Session {
	settings = settings.Clamped()
	return &Session{
		settings: settings,
		window:   NewWindow(settings.Horizon, settings.StaleAfter),
		wave:     NewWaveRecognizer(settings),
		palm:     NewPalmUpRecognizer(settings),
		arbiter:  NewArbiter(settings),
	}
}

// Settings returns the effective (clamped) session settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// Process runs one tick: adapt the tracking result, update the window
// and both recognizers, and arbitrate. It returns the emitted event or
// nil; "no gesture this tick" is a normal result, never an error.
func (s *Session) Process(res track.Result) *Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := AdaptFrame(res, s.settings.Thresholds)

	// Only frames with a hand enter the window. A gap beyond the stale
	// threshold restarts it; evidence accumulated before a tracking gap
	// cannot continue a gesture. Sustained absence clears everything.
	if frame.Present {
		if s.window.Push(frame) {
			s.wave.Reset()
			s.palm.Reset()
		}
		s.lastPresent = frame.Timestamp
	} else if !s.lastPresent.IsZero() && frame.Timestamp.Sub(s.lastPresent) > s.settings.StaleAfter {
		s.window.Clear()
		s.wave.Reset()
		s.palm.Reset()
		s.lastPresent = time.Time{}
	}

	var candidates []Candidate
	if c := s.wave.Observe(frame, s.window); c != nil {
		candidates = append(candidates, *c)
	}
	if c := s.palm.Observe(frame, s.window); c != nil {
		candidates = append(candidates, *c)
	}

	var preOK [numKinds]bool
	preOK[KindWave] = s.wave.Precondition(frame)
	preOK[KindPalmUp] = s.palm.Precondition(frame)

	event := s.arbiter.Decide(frame.Timestamp, candidates, preOK)
	if event != nil {
		// A successful detection must not be re-triggered by its own
		// trailing frames.
		switch event.Kind {
		case KindWave:
			s.wave.Reset()
		case KindPalmUp:
			s.palm.Reset()
		}
	}

	return event
}

// WindowLen returns the number of frames currently retained. Intended
// for status reporting.
func (s *Session) WindowLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Len()
}

// Reset discards all in-flight recognizer and window state with no
// partial emission. Safe to call at any tick boundary.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window.Clear()
	s.wave.Reset()
	s.palm.Reset()
	s.arbiter.Reset()
	s.lastPresent = time.Time{}
}
