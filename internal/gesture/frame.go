package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/track"
)

// Finger indices into HandFrame.FingerExtended.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// Point2D is a normalized image-plane position.
type Point2D struct {
	X float64
	Y float64
}

// HandFrame is the canonical per-tick hand state derived from one
// tracking result. When Present is false the positional fields are
// undefined and must not be read.
type HandFrame struct {
	Present            bool
	Timestamp          time.Time
	Centroid           Point2D
	FingerExtended     [NumFingers]bool
	PalmFacingCamera   bool
	TrackingConfidence float64
}

// ExtendedCount returns how many fingers are extended.
func (f HandFrame) ExtendedCount() int {
	n := 0
	for _, up := range f.FingerExtended {
		if up {
			n++
		}
	}
	return n
}

// fingerTips pairs each non-thumb finger with its MCP landmark.
var fingerTips = [...]struct{ finger, tip, mcp int }{
	{Index, track.IndexTip, track.IndexMCP},
	{Middle, track.MiddleTip, track.MiddleMCP},
	{Ring, track.RingTip, track.RingMCP},
	{Pinky, track.PinkyTip, track.PinkyMCP},
}

// AdaptFrame converts one tracking result into a HandFrame. A result
// with no hand, or one with degenerate geometry (non-finite coordinates,
// points far outside the image, zero palm scale), yields Present=false.
func AdaptFrame(res track.Result, th Thresholds) HandFrame {
	frame := HandFrame{Timestamp: res.Timestamp}

	hand := res.Hand
	if hand == nil || !validGeometry(hand) {
		return frame
	}

	scale := hand.PalmScale()
	if scale < 1e-6 {
		return frame
	}

	frame.Present = true
	frame.TrackingConfidence = clamp(hand.Score, 0, 1)

	c := hand.Centroid()
	frame.Centroid = Point2D{X: c.X, Y: c.Y}

	// Finger extension in hand-local units so the test is invariant to
	// hand size and camera distance.
	for _, ft := range fingerTips {
		d := hand.Points[ft.tip].Dist(hand.Points[ft.mcp]) / scale
		frame.FingerExtended[ft.finger] = d >= th.FingerExtend
	}
	thumbReach := hand.Points[track.ThumbTip].Dist(hand.Points[track.PinkyMCP]) / scale
	frame.FingerExtended[Thumb] = thumbReach >= th.ThumbExtend

	frame.PalmFacingCamera = palmFacing(hand, th.PalmTolerance)

	return frame
}

// palmFacing derives palm orientation from the palm normal: the cross
// product of the wrist->indexMCP and wrist->pinkyMCP vectors. The
// normal's camera-axis component flips sign with handedness.
func palmFacing(hand *track.HandLandmarks, tolerance float64) bool {
	wrist := hand.Points[track.Wrist]
	v1 := hand.Points[track.IndexMCP].Sub(wrist)
	v2 := hand.Points[track.PinkyMCP].Sub(wrist)

	n := v1.Cross(v2)
	mag := n.Dist(track.Point3D{})
	if mag < 1e-9 {
		return false
	}

	nz := n.Z / mag
	if hand.Handedness == "Left" {
		nz = -nz
	}
	return nz < -tolerance
}

// validGeometry rejects tracking results with non-finite or wildly
// out-of-range landmark coordinates. MediaPipe positions are normalized
// to the image, so anything beyond one image-width of margin is noise.
func validGeometry(hand *track.HandLandmarks) bool {
	for _, p := range hand.Points {
		if !p.Valid() {
			return false
		}
		if p.X < -1 || p.X > 2 || p.Y < -1 || p.Y > 2 {
			return false
		}
	}
	return true
}
