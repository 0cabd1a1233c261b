package gesture

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a gesture. It is a closed set: the arbiter handles
// every kind exhaustively, so adding one is a compile-time extension.
type Kind int

const (
	KindWave Kind = iota
	KindPalmUp
	numKinds
)

// String returns the wire/storage name of the kind.
func (k Kind) String() string {
	switch k {
	case KindWave:
		return "wave"
	case KindPalmUp:
		return "palm_up"
	default:
		return "unknown"
	}
}

// ParseKind maps a storage name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "wave":
		return KindWave, true
	case "palm_up":
		return KindPalmUp, true
	default:
		return 0, false
	}
}

// Event is one emitted gesture. At most one is produced per tick.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"-"`
	KindName   string    `json:"kind"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

func newEvent(kind Kind, confidence float64, ts time.Time) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		KindName:   kind.String(),
		Confidence: confidence,
		Timestamp:  ts,
	}
}

// Candidate is a recognizer's per-tick proposal, before arbitration.
type Candidate struct {
	Kind       Kind
	Confidence float64
}
