// Package hand turns pose estimator output and raw frames into per-hand records.
package hand

import (
	"image"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Record is a snapshot of one hand in one frame. Records are built fresh for
// every frame and never modified afterwards.
type Record struct {
	// ID is the detection slot (0 or 1) within the frame, not a track id.
	ID         int     `json:"id"`
	Handedness string  `json:"handedness"`
	Confidence float64 `json:"confidence"`

	// Landmarks holds exactly 21 points, or none for contour records.
	Landmarks []detector.Point3D `json:"landmarks,omitempty"`
	Pixels    []image.Point      `json:"pixels,omitempty"`

	Center  image.Point     `json:"center"`
	BBox    image.Rectangle `json:"bbox"`
	Gesture gesture.Result  `json:"gesture"`

	// TipDistances maps "Thumb-Index" style pairs to normalized distances.
	TipDistances map[string]float64 `json:"tip_distances,omitempty"`
	Volume       float64            `json:"volume"`

	// Contour detector output.
	Fingers int           `json:"fingers,omitempty"`
	Contour []image.Point `json:"-"`
	Hull    []image.Point `json:"-"`
}

// HasLandmarks reports whether the record came from the pose estimator.
func (r *Record) HasLandmarks() bool {
	return len(r.Landmarks) == detector.NumLandmarks
}

// Distance returns the normalized distance between two landmarks.
// It panics for contour records.
func (r *Record) Distance(i, j int) float64 {
	return detector.Distance3D(r.Landmarks[i], r.Landmarks[j])
}

// TipPair names the distance table key for two fingers.
func TipPair(a, b detector.Finger) string {
	return a.String() + "-" + b.String()
}
