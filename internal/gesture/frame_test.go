package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/track"
)

func TestAdaptFrame_OpenPalm(t *testing.T) {
	hand := track.OpenPalmLandmarks()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	frame := AdaptFrame(track.Result{Hand: &hand, Timestamp: ts}, DefaultThresholds())

	if !frame.Present {
		t.Fatal("expected frame to be present for a tracked open palm")
	}
	if frame.Timestamp != ts {
		t.Errorf("timestamp not carried over: got %v", frame.Timestamp)
	}
	if got := frame.ExtendedCount(); got != 5 {
		t.Errorf("expected 5 extended fingers for open palm, got %d", got)
	}
	if !frame.PalmFacingCamera {
		t.Error("expected open palm to face the camera")
	}
	if frame.TrackingConfidence != 0.95 {
		t.Errorf("expected tracking confidence 0.95, got %f", frame.TrackingConfidence)
	}
	if frame.Centroid.X < 0.4 || frame.Centroid.X > 0.6 {
		t.Errorf("centroid x out of expected band: %f", frame.Centroid.X)
	}
}

func TestAdaptFrame_Fist(t *testing.T) {
	hand := track.FistLandmarks()

	frame := AdaptFrame(track.Result{Hand: &hand, Timestamp: time.Now()}, DefaultThresholds())

	if !frame.Present {
		t.Fatal("expected frame to be present for a tracked fist")
	}
	if got := frame.ExtendedCount(); got != 0 {
		t.Errorf("expected 0 extended fingers for fist, got %d", got)
	}
}

func TestAdaptFrame_NoHand(t *testing.T) {
	frame := AdaptFrame(track.Result{Timestamp: time.Now()}, DefaultThresholds())

	if frame.Present {
		t.Error("expected absent frame when no hand is detected")
	}
}

func TestAdaptFrame_DegenerateGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*track.HandLandmarks)
	}{
		{
			name: "NaN coordinate",
			mutate: func(h *track.HandLandmarks) {
				h.Points[track.IndexTip].X = math.NaN()
			},
		},
		{
			name: "infinite coordinate",
			mutate: func(h *track.HandLandmarks) {
				h.Points[track.Wrist].Y = math.Inf(1)
			},
		},
		{
			name: "far out of range",
			mutate: func(h *track.HandLandmarks) {
				h.Points[track.PinkyTip].X = 50
			},
		},
		{
			name: "zero palm scale",
			mutate: func(h *track.HandLandmarks) {
				h.Points[track.MiddleMCP] = h.Points[track.Wrist]
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := track.OpenPalmLandmarks()
			tt.mutate(&hand)

			frame := AdaptFrame(track.Result{Hand: &hand, Timestamp: time.Now()}, DefaultThresholds())

			if frame.Present {
				t.Error("degenerate geometry should be treated as absent")
			}
		})
	}
}

func TestAdaptFrame_LeftHandPalmFlips(t *testing.T) {
	// Mirroring the right-hand fixture across the vertical axis and
	// relabeling it as a left hand keeps the palm toward the camera.
	hand := track.OpenPalmLandmarks()
	for i := range hand.Points {
		hand.Points[i].X = 1 - hand.Points[i].X
	}
	hand.Handedness = "Left"

	frame := AdaptFrame(track.Result{Hand: &hand, Timestamp: time.Now()}, DefaultThresholds())

	if !frame.Present {
		t.Fatal("expected mirrored left hand to be present")
	}
	if !frame.PalmFacingCamera {
		t.Error("expected mirrored left-hand open palm to face the camera")
	}
}
