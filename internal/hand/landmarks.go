// Package hand models the hand landmark frames streamed by the tracking service.
package hand

import "math"

// Landmark indices. The service uses the common 21-point hand model.
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

// Point3D is a position in tracking space, in millimetres.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Distance returns the Euclidean distance between p and q.
func (p Point3D) Distance(q Point3D) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Landmarks is the fixed set of 21 points of one hand.
type Landmarks [NumLandmarks]Point3D

// Normalize returns the landmarks translated so the wrist is at the origin and
// scaled so the wrist to middle-finger MCP distance is 1. A degenerate hand
// (wrist and MCP coincide) is only translated.
func (l Landmarks) Normalize() Landmarks {
	var out Landmarks
	wrist := l[Wrist]
	for i := range l {
		out[i] = l[i].Sub(wrist)
	}

	scale := out[MiddleMCP].Distance(Point3D{})
	if scale < 1e-10 {
		return out
	}
	for i := range out {
		out[i].X /= scale
		out[i].Y /= scale
		out[i].Z /= scale
	}
	return out
}

// PinchDistance returns the thumb tip to index tip distance relative to hand
// size, so it is comparable across hands and depths.
func (l Landmarks) PinchDistance() float64 {
	n := l.Normalize()
	return n[ThumbTip].Distance(n[IndexTip])
}
