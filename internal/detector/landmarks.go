// Package detector provides hand landmark types and the pose estimator interface.
package detector

import (
	"image"
	"math"
)

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

// Finger identifies one of the five digits, thumb first.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers = 5
)

var fingerNames = [NumFingers]string{"Thumb", "Index", "Middle", "Ring", "Pinky"}

// fingerChains lists the joints of each finger from the knuckle to the tip.
// The thumb chain starts at its MCP joint.
var fingerChains = [NumFingers][]int{
	{ThumbMCP, ThumbIP, ThumbTip},
	{IndexMCP, IndexPIP, IndexDIP, IndexTip},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	{RingMCP, RingPIP, RingDIP, RingTip},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// String returns the finger name, e.g. "Index".
func (f Finger) String() string {
	if f < 0 || int(f) >= NumFingers {
		return "Unknown"
	}
	return fingerNames[f]
}

// Chain returns the landmark indices of the finger, knuckle first, tip last.
func (f Finger) Chain() []int {
	return fingerChains[f]
}

// Tip returns the landmark index of the fingertip.
func (f Finger) Tip() int {
	chain := fingerChains[f]
	return chain[len(chain)-1]
}

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance3D calculates the Euclidean distance between two 3D points.
func Distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ToPixel scales a normalized landmark to frame coordinates.
// Fractions are truncated toward zero.
func ToPixel(p Point3D, width, height int) image.Point {
	return image.Point{
		X: int(p.X * float64(width)),
		Y: int(p.Y * float64(height)),
	}
}

// Distance returns the distance between two landmarks of the hand.
func (h *HandLandmarks) Distance(i, j int) float64 {
	return Distance3D(h.Points[i], h.Points[j])
}
