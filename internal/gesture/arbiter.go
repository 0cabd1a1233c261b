package gesture

import "time"

// Phase is the per-kind arbitration state.
type Phase int

const (
	// PhaseIdle means no evidence is accumulating for the kind.
	PhaseIdle Phase = iota
	// PhaseAccumulating means the precondition held on the last tick.
	PhaseAccumulating
	// PhaseFired means the kind emitted recently and is locked out
	// until the cooldown has elapsed and the precondition has been
	// broken at least once.
	PhaseFired
)

type kindState struct {
	phase       Phase
	lastEmit    time.Time
	everEmitted bool
	// brokenSinceFire blocks an unbroken hold from re-firing the
	// instant the cooldown lapses.
	brokenSinceFire bool
}

// Arbiter merges recognizer candidates into at most one event per tick,
// applying enable flags, confidence thresholds, mutual exclusion, and
// per-kind cooldowns.
type Arbiter struct {
	settings Settings
	states   [numKinds]kindState
}

// NewArbiter creates an arbiter with the given settings.
func NewArbiter(settings Settings) *Arbiter {
	return &Arbiter{settings: settings}
}

// Decide takes this tick's candidates (at most one per kind) and the
// per-kind precondition status, and returns the emitted event or nil.
func (a *Arbiter) Decide(now time.Time, candidates []Candidate, preOK [numKinds]bool) *Event {
	a.advance(now, preOK)

	// Enable flags and per-kind confidence thresholds.
	surviving := candidates[:0:0]
	for _, c := range candidates {
		ks := a.kindSettings(c.Kind)
		if !ks.Enabled || c.Confidence < ks.ConfidenceThreshold {
			continue
		}
		surviving = append(surviving, c)
	}
	if len(surviving) == 0 {
		return nil
	}

	// Mutual exclusion: the two gestures are physically incompatible
	// within one tick, so only the most confident survivor remains.
	best := surviving[0]
	for _, c := range surviving[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}

	st := &a.states[best.Kind]
	if st.phase == PhaseFired {
		return nil
	}
	if st.everEmitted && now.Sub(st.lastEmit) < a.settings.Cooldown {
		return nil
	}

	st.phase = PhaseFired
	st.lastEmit = now
	st.everEmitted = true
	st.brokenSinceFire = false

	return newEvent(best.Kind, best.Confidence, now)
}

// Phase returns the current arbitration phase for a kind.
func (a *Arbiter) Phase(kind Kind) Phase {
	return a.states[kind].phase
}

// Reset clears the cooldown ledger and all per-kind state.
func (a *Arbiter) Reset() {
	a.states = [numKinds]kindState{}
}

// advance runs the per-kind state machine transitions for this tick.
func (a *Arbiter) advance(now time.Time, preOK [numKinds]bool) {
	for k := Kind(0); k < numKinds; k++ {
		st := &a.states[k]
		switch st.phase {
		case PhaseFired:
			if !preOK[k] {
				st.brokenSinceFire = true
			}
			if st.brokenSinceFire && now.Sub(st.lastEmit) >= a.settings.Cooldown {
				st.phase = PhaseIdle
			}
		default:
			if preOK[k] {
				st.phase = PhaseAccumulating
			} else {
				st.phase = PhaseIdle
			}
		}
	}
}

func (a *Arbiter) kindSettings(kind Kind) KindSettings {
	switch kind {
	case KindWave:
		return a.settings.Wave
	case KindPalmUp:
		return a.settings.PalmUp
	default:
		return KindSettings{}
	}
}
