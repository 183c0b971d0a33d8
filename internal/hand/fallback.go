package hand

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/gesture"
)

// Fallback detector tuning.
const (
	MinContourArea    = 500.0
	ContourConfidence = 0.6
	contourKernelSize = 5
	maxContourHands   = 2
)

// FallbackDetector finds hands by skin colour when no pose estimator is
// available. It cannot classify gestures; each hand is named by a rough
// finger count taken from its convex hull.
type FallbackDetector struct {
	lower  gocv.Scalar
	upper  gocv.Scalar
	kernel gocv.Mat
	trails *Trails
}

// NewFallbackDetector creates a FallbackDetector. trails may be nil.
func NewFallbackDetector(trails *Trails) *FallbackDetector {
	return &FallbackDetector{
		lower:  gocv.NewScalar(0, 20, 70, 0),
		upper:  gocv.NewScalar(20, 255, 255, 0),
		kernel: gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(contourKernelSize, contourKernelSize)),
		trails: trails,
	}
}

// Records segments skin regions in a BGR frame and returns up to two records.
func (d *FallbackDetector) Records(frame *gocv.Mat) ([]Record, error) {
	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("fallback detector: empty frame")
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(*frame, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, d.lower, d.upper, &mask)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(mask, &closed, gocv.MorphClose, d.kernel)

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, d.kernel)

	contours := gocv.FindContours(opened, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	blobs := make([]blob, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		blobs = append(blobs, blob{index: i, area: gocv.ContourArea(contours.At(i))})
	}

	var records []Record
	for rank, b := range largestBlobs(blobs, maxContourHands, MinContourArea) {
		pv := contours.At(b.index)
		contour := pv.ToPoints()

		rec := contourRecord(rank, contour, convexHull(pv, contour), gocv.BoundingRect(pv))
		if d.trails != nil {
			d.trails.Push(rec.ID, rec.Center)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close releases the morphology kernel.
func (d *FallbackDetector) Close() error {
	return d.kernel.Close()
}

type blob struct {
	index int
	area  float64
}

// largestBlobs keeps the n largest blobs and then drops those under minArea.
// The result keeps the rank order, so a small second blob never promotes a
// third one.
func largestBlobs(blobs []blob, n int, minArea float64) []blob {
	sorted := make([]blob, len(blobs))
	copy(sorted, blobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].area > sorted[j].area
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	kept := sorted[:0]
	for _, b := range sorted {
		if b.area >= minArea {
			kept = append(kept, b)
		}
	}
	return kept
}

func convexHull(pv gocv.PointVector, contour []image.Point) []image.Point {
	indices := gocv.NewMat()
	defer indices.Close()
	gocv.ConvexHull(pv, &indices, false, false)

	hull := make([]image.Point, 0, indices.Rows())
	for i := 0; i < indices.Rows(); i++ {
		idx := int(indices.GetIntAt(i, 0))
		if idx >= 0 && idx < len(contour) {
			hull = append(hull, contour[idx])
		}
	}
	return hull
}

// contourRecord builds the record of the rank-th largest skin region.
func contourRecord(rank int, contour, hull []image.Point, box image.Rectangle) Record {
	fingers := max(len(hull)-1, 0)

	handedness := "Left"
	if rank == 0 {
		handedness = "Right"
	}

	return Record{
		ID:         rank,
		Handedness: handedness,
		Confidence: ContourConfidence,
		Center:     centroid(contour, box),
		BBox:       box,
		Gesture: gesture.Result{
			Name:       fmt.Sprintf("Hand (%d fingers)", fingers),
			Confidence: ContourConfidence,
		},
		Fingers: fingers,
		Contour: contour,
		Hull:    hull,
	}
}
