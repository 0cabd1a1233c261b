package gesture

import (
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/track"
)

func openResult(ts time.Time, x float64) track.Result {
	hand := track.OpenPalmLandmarks()
	shifted := track.Shifted(hand, x-hand.Centroid().X)
	return track.Result{Hand: &shifted, Timestamp: ts}
}

func fistResult(ts time.Time) track.Result {
	hand := track.FistLandmarks()
	return track.Result{Hand: &hand, Timestamp: ts}
}

func absentResult(ts time.Time) track.Result {
	return track.Result{Timestamp: ts}
}

// feed processes a batch of results and returns all emitted events.
func feed(s *Session, results []track.Result) []*Event {
	var events []*Event
	for _, res := range results {
		if ev := s.Process(res); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

// waveBurst builds one full wave sweep (two wide reversals) starting at
// base with 50ms ticks, ending at base+400ms.
func waveBurst(base time.Time) []track.Result {
	xs := []float64{0.30, 0.40, 0.50, 0.60, 0.50, 0.40, 0.30, 0.40, 0.50}
	results := make([]track.Result, len(xs))
	for i, x := range xs {
		results[i] = openResult(base.Add(time.Duration(i)*50*time.Millisecond), x)
	}
	return results
}

func TestSession_AbsentHandEmitsNothing(t *testing.T) {
	s := NewSession(DefaultSettings())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var results []track.Result
	for off := time.Duration(0); off < 10*time.Second; off += 100 * time.Millisecond {
		results = append(results, absentResult(base.Add(off)))
	}

	if events := feed(s, results); len(events) != 0 {
		t.Errorf("absent hand must never emit, got %d events", len(events))
	}
}

func TestSession_SingleWave(t *testing.T) {
	settings := DefaultSettings()
	s := NewSession(settings)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := feed(s, waveBurst(base))

	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	if events[0].Kind != KindWave {
		t.Errorf("expected wave, got %v", events[0].Kind)
	}
	if events[0].Confidence < settings.Wave.ConfidenceThreshold {
		t.Errorf("expected confidence >= threshold %f, got %f",
			settings.Wave.ConfidenceThreshold, events[0].Confidence)
	}
}

func TestSession_WaveCooldown(t *testing.T) {
	settings := DefaultSettings()
	settings.Cooldown = 2 * time.Second
	s := NewSession(settings)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var results []track.Result

	// First wave: emits at ~base+400ms.
	results = append(results, waveBurst(base)...)

	// Break the precondition, then a second wave inside the cooldown.
	results = append(results,
		fistResult(base.Add(500*time.Millisecond)),
		fistResult(base.Add(600*time.Millisecond)),
	)
	results = append(results, waveBurst(base.Add(700*time.Millisecond))...)

	// Keep ticking with fists until the cooldown has lapsed, then a
	// third wave, now outside the cooldown.
	for off := 1300 * time.Millisecond; off < 2600*time.Millisecond; off += 200 * time.Millisecond {
		results = append(results, fistResult(base.Add(off)))
	}
	results = append(results, waveBurst(base.Add(2600*time.Millisecond))...)

	events := feed(s, results)

	if len(events) != 2 {
		t.Fatalf("expected 2 events (second wave suppressed by cooldown), got %d", len(events))
	}
	for i, ev := range events {
		if ev.Kind != KindWave {
			t.Errorf("event %d: expected wave, got %v", i, ev.Kind)
		}
	}
	if gap := events[1].Timestamp.Sub(events[0].Timestamp); gap < settings.Cooldown {
		t.Errorf("emissions %v apart, closer than cooldown %v", gap, settings.Cooldown)
	}
}

func TestSession_PalmUpHoldBoundary(t *testing.T) {
	tests := []struct {
		name string
		span time.Duration
		want int
	}{
		{name: "exactly min hold", span: 1500 * time.Millisecond, want: 1},
		{name: "just under min hold", span: 1400 * time.Millisecond, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(DefaultSettings())
			base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

			var results []track.Result
			for off := time.Duration(0); off <= tt.span; off += 100 * time.Millisecond {
				results = append(results, openResult(base.Add(off), 0.5))
			}

			events := feed(s, results)
			if len(events) != tt.want {
				t.Fatalf("expected %d events, got %d", tt.want, len(events))
			}
			if tt.want == 1 && events[0].Kind != KindPalmUp {
				t.Errorf("expected palm-up, got %v", events[0].Kind)
			}
		})
	}
}

func TestSession_PalmUpInterruptionRestartsTimer(t *testing.T) {
	s := NewSession(DefaultSettings())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	step := 100 * time.Millisecond

	var results []track.Result
	// 1.2s of hold, a single bad frame, then 1.2s more: 2.5s of
	// near-continuous posture with no continuous 1.5s stretch.
	for off := time.Duration(0); off <= 1200*time.Millisecond; off += step {
		results = append(results, openResult(base.Add(off), 0.5))
	}
	results = append(results, fistResult(base.Add(1300*time.Millisecond)))
	for off := 1400 * time.Millisecond; off <= 2600*time.Millisecond; off += step {
		results = append(results, openResult(base.Add(off), 0.5))
	}

	if events := feed(s, results); len(events) != 0 {
		t.Fatalf("interrupted hold must not emit, got %d events", len(events))
	}

	// Extending the second hold to a full fresh duration emits once.
	var tail []track.Result
	for off := 2700 * time.Millisecond; off <= 3000*time.Millisecond; off += step {
		tail = append(tail, openResult(base.Add(off), 0.5))
	}
	events := feed(s, tail)
	if len(events) != 1 {
		t.Fatalf("expected one event after a fresh full hold, got %d", len(events))
	}
	if events[0].Kind != KindPalmUp {
		t.Errorf("expected palm-up, got %v", events[0].Kind)
	}
}

func TestSession_TrackingGapClearsWindow(t *testing.T) {
	s := NewSession(DefaultSettings())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for off := time.Duration(0); off <= 500*time.Millisecond; off += 100 * time.Millisecond {
		s.Process(openResult(base.Add(off), 0.5))
	}
	if s.WindowLen() == 0 {
		t.Fatal("expected frames in the window")
	}

	// Hand disappears; absence past the stale threshold clears all
	// retained evidence. Never an error, never an event.
	for off := 600 * time.Millisecond; off <= 2*time.Second; off += 100 * time.Millisecond {
		if ev := s.Process(absentResult(base.Add(off))); ev != nil {
			t.Fatal("absence must not emit")
		}
	}
	if got := s.WindowLen(); got != 0 {
		t.Errorf("expected cleared window after absence timeout, got %d frames", got)
	}
}

func TestSession_ResetDiscardsProgress(t *testing.T) {
	s := NewSession(DefaultSettings())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Accumulate 1.2s of a hold, then reset mid-gesture.
	for off := time.Duration(0); off <= 1200*time.Millisecond; off += 100 * time.Millisecond {
		s.Process(openResult(base.Add(off), 0.5))
	}
	s.Reset()

	// 400ms more would have completed the original hold; after the
	// reset it is a fresh start.
	var results []track.Result
	for off := 1300 * time.Millisecond; off <= 1800*time.Millisecond; off += 100 * time.Millisecond {
		results = append(results, openResult(base.Add(off), 0.5))
	}
	if events := feed(s, results); len(events) != 0 {
		t.Error("reset must discard in-flight hold progress")
	}
}

func TestSession_DisabledKindNeverEmits(t *testing.T) {
	settings := DefaultSettings()
	settings.PalmUp.Enabled = false
	s := NewSession(settings)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var results []track.Result
	for off := time.Duration(0); off <= 4*time.Second; off += 100 * time.Millisecond {
		results = append(results, openResult(base.Add(off), 0.5))
	}
	if events := feed(s, results); len(events) != 0 {
		t.Errorf("disabled palm-up emitted %d events", len(events))
	}
}

func TestSession_SettingsClamped(t *testing.T) {
	settings := DefaultSettings()
	settings.Sensitivity = 7.5
	settings.Wave.ConfidenceThreshold = -3

	s := NewSession(settings)
	got := s.Settings()

	if got.Sensitivity != MaxSensitivity {
		t.Errorf("expected sensitivity clamped to %f, got %f", MaxSensitivity, got.Sensitivity)
	}
	if got.Wave.ConfidenceThreshold != 0 {
		t.Errorf("expected threshold clamped to 0, got %f", got.Wave.ConfidenceThreshold)
	}
}
