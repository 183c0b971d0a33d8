package hand

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// centroid returns the centroid of a closed contour from its spatial
// moments. When the contour encloses no area the center of box is used.
func centroid(contour []image.Point, box image.Rectangle) image.Point {
	center := image.Pt(box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2)
	if len(contour) < 3 {
		return center
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()
	points := gocv.NewMatFromPointVector(pv, false)
	defer points.Close()

	m := gocv.Moments(points, false)
	if m["m00"] == 0 {
		return center
	}
	return image.Pt(int(math.Round(m["m10"]/m["m00"])), int(math.Round(m["m01"]/m["m00"])))
}
