package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset hand geometry. Fingers stand side by side with their knuckles on
// y=0.60; an extended finger rises in 0.12 steps, a curled one folds its tip
// back within 0.04 of the knuckle.
var presetFingerX = [NumFingers]float64{0.30, 0.40, 0.50, 0.60, 0.70}

type thumbPose int

const (
	thumbCurled thumbPose = iota
	thumbUp
	thumbSideways
)

func newPreset(thumb thumbPose, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.90, Z: 0.0}

	switch thumb {
	case thumbUp:
		h.Points[ThumbCMC] = Point3D{X: 0.34, Y: 0.80, Z: 0.0}
		h.Points[ThumbMCP] = Point3D{X: 0.30, Y: 0.70, Z: 0.0}
		h.Points[ThumbIP] = Point3D{X: 0.30, Y: 0.58, Z: 0.0}
		h.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.46, Z: 0.0}
	case thumbSideways:
		h.Points[ThumbCMC] = Point3D{X: 0.34, Y: 0.80, Z: 0.0}
		h.Points[ThumbMCP] = Point3D{X: 0.30, Y: 0.70, Z: 0.0}
		h.Points[ThumbIP] = Point3D{X: 0.18, Y: 0.70, Z: 0.0}
		h.Points[ThumbTip] = Point3D{X: 0.06, Y: 0.70, Z: 0.0}
	default:
		h.Points[ThumbCMC] = Point3D{X: 0.36, Y: 0.80, Z: 0.0}
		h.Points[ThumbMCP] = Point3D{X: 0.34, Y: 0.70, Z: 0.0}
		h.Points[ThumbIP] = Point3D{X: 0.38, Y: 0.66, Z: -0.02}
		h.Points[ThumbTip] = Point3D{X: 0.40, Y: 0.64, Z: -0.02}
	}

	for f, extended := range map[Finger]bool{Index: index, Middle: middle, Ring: ring, Pinky: pinky} {
		setPresetFinger(&h, f, extended)
	}

	return h
}

func setPresetFinger(h *HandLandmarks, f Finger, extended bool) {
	x := presetFingerX[f]
	chain := f.Chain()

	h.Points[chain[0]] = Point3D{X: x, Y: 0.60, Z: 0.0}
	if extended {
		h.Points[chain[1]] = Point3D{X: x, Y: 0.48, Z: 0.0}
		h.Points[chain[2]] = Point3D{X: x, Y: 0.36, Z: 0.0}
		h.Points[chain[3]] = Point3D{X: x, Y: 0.24, Z: 0.0}
		return
	}
	h.Points[chain[1]] = Point3D{X: x, Y: 0.52, Z: -0.03}
	h.Points[chain[2]] = Point3D{X: x, Y: 0.56, Z: -0.04}
	h.Points[chain[3]] = Point3D{X: x + 0.01, Y: 0.63, Z: -0.02}
}

// OpenPalmLandmarks returns a preset hand with every finger extended.
func OpenPalmLandmarks() HandLandmarks {
	return newPreset(thumbUp, true, true, true, true)
}

// FistLandmarks returns a preset hand with every fingertip folded onto its knuckle.
func FistLandmarks() HandLandmarks {
	return newPreset(thumbCurled, false, false, false, false)
}

// ThumbsUpLandmarks returns a preset hand with the thumb pointing up and the
// other fingers curled.
func ThumbsUpLandmarks() HandLandmarks {
	return newPreset(thumbUp, false, false, false, false)
}

// ThumbSidewaysLandmarks is ThumbsUpLandmarks with the thumb pointing sideways.
func ThumbSidewaysLandmarks() HandLandmarks {
	return newPreset(thumbSideways, false, false, false, false)
}

// OKSignLandmarks returns a preset hand with thumb and index tips touching and
// the remaining fingers extended.
func OKSignLandmarks() HandLandmarks {
	return newPreset(thumbCurled, false, true, true, true)
}

// PeaceSignLandmarks returns a preset hand with index and middle extended.
func PeaceSignLandmarks() HandLandmarks {
	return newPreset(thumbCurled, true, true, false, false)
}

// PointingLandmarks returns a preset hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return newPreset(thumbCurled, true, false, false, false)
}

// PinchLandmarks returns an open palm whose thumb tip sits exactly distance
// away from the index tip, offset along the depth axis.
func PinchLandmarks(distance float64) HandLandmarks {
	h := OpenPalmLandmarks()
	tip := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{X: tip.X, Y: tip.Y, Z: tip.Z + distance}
	return h
}

// Shifted returns a copy of h translated by (dx, dy) in normalized units.
func Shifted(h HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
