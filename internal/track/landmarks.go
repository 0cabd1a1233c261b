// Package track provides hand tracking interfaces and landmark types.
package track

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a normalized landmark position. X and Y are in image
// coordinates (0..1); Z is relative depth, negative toward the camera.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns the vector from b to p.
func (p Point3D) Sub(b Point3D) Point3D {
	return Point3D{X: p.X - b.X, Y: p.Y - b.Y, Z: p.Z - b.Z}
}

// Dist returns the Euclidean distance between p and b.
func (p Point3D) Dist(b Point3D) float64 {
	d := p.Sub(b)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Cross returns the cross product p x b.
func (p Point3D) Cross(b Point3D) Point3D {
	return Point3D{
		X: p.Y*b.Z - p.Z*b.Y,
		Y: p.Z*b.X - p.X*b.Z,
		Z: p.X*b.Y - p.Y*b.X,
	}
}

// Valid reports whether the point holds finite coordinates.
func (p Point3D) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// HandLandmarks holds the 21 hand landmarks reported by the tracker.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// PalmScale returns the wrist to middle-MCP distance, the reference
// length used to express measurements in hand-local units so they are
// independent of how far the hand is from the camera.
func (h *HandLandmarks) PalmScale() float64 {
	return h.Points[Wrist].Dist(h.Points[MiddleMCP])
}

// Centroid returns the mean position of the wrist and the four finger
// MCP knuckles, a stable representative point for the whole hand.
func (h *HandLandmarks) Centroid() Point3D {
	var c Point3D
	for _, i := range []int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		c.X += h.Points[i].X
		c.Y += h.Points[i].Y
		c.Z += h.Points[i].Z
	}
	c.X /= 5
	c.Y /= 5
	c.Z /= 5
	return c
}

// Normalize returns a copy of the landmarks translated so the wrist sits
// at the origin and scaled so the wrist to middle-MCP distance is 1.0.
// Returns nil when the reference segment is degenerate.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	scale := h.PalmScale()
	if scale < 1e-10 {
		return nil
	}

	out := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		d := h.Points[i].Sub(wrist)
		out.Points[i] = Point3D{X: d.X / scale, Y: d.Y / scale, Z: d.Z / scale}
	}

	return out
}
