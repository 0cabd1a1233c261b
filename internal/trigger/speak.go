package trigger

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ayusman/mudra/internal/gesture"
)

// Speaker announces a detected gesture using the system text-to-speech
// tool: say on macOS, espeak on Linux.
type Speaker struct {
	phrases map[gesture.Kind]string
}

// NewSpeaker creates the trigger with default per-gesture phrases.
func NewSpeaker() *Speaker {
	return &Speaker{
		phrases: map[gesture.Kind]string{
			gesture.KindWave:   "Wave detected",
			gesture.KindPalmUp: "Listening",
		},
	}
}

// SetPhrase overrides the phrase spoken for a gesture kind.
func (s *Speaker) SetPhrase(kind gesture.Kind, phrase string) {
	s.phrases[kind] = phrase
}

func (s *Speaker) Name() string { return "speak" }

func (s *Speaker) Fire(ctx context.Context, ev *gesture.Event) error {
	phrase, ok := s.phrases[ev.Kind]
	if !ok || phrase == "" {
		phrase = ev.KindName
	}
	return s.Say(ctx, phrase)
}

// Say speaks an arbitrary phrase. Also used to read assistant replies
// aloud.
func (s *Speaker) Say(ctx context.Context, phrase string) error {
	switch runtime.GOOS {
	case "darwin":
		_, err := runCommand(ctx, "say", phrase)
		return err
	case "linux":
		_, err := runCommand(ctx, "espeak", phrase)
		return err
	default:
		return fmt.Errorf("text-to-speech not supported on %s", runtime.GOOS)
	}
}
