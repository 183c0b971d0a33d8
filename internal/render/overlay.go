package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// Colours as seen on screen.
var (
	Green  = color.RGBA{G: 255, A: 255}
	Blue   = color.RGBA{B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Grey   = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	Trail  = color.RGBA{R: 100, G: 100, B: 255, A: 255}
	Cursor = color.RGBA{R: 255, G: 200, B: 100, A: 255}
)

// connections are the bones drawn between landmarks.
var connections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP}, {detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP}, {detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.Wrist, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.Wrist, detector.RingMCP}, {detector.RingMCP, detector.RingPIP}, {detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.Wrist, detector.PinkyMCP}, {detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
}

func isTip(i int) bool {
	return i == detector.ThumbTip || i == detector.IndexTip || i == detector.MiddleTip ||
		i == detector.RingTip || i == detector.PinkyTip
}

// HandColor is green for right hands and blue otherwise.
func HandColor(handedness string) color.RGBA {
	if handedness == "Right" {
		return Green
	}
	return Blue
}

// DrawHands draws every record with its trail.
func DrawHands(img *gocv.Mat, records []hand.Record, trails *hand.Trails) {
	for i := range records {
		rec := &records[i]
		if rec.HasLandmarks() {
			drawLandmarkHand(img, rec)
		} else {
			drawContourHand(img, rec)
		}
		if trails != nil {
			DrawTrail(img, trails.Points(rec.ID))
		}
	}
}

func drawLandmarkHand(img *gocv.Mat, rec *hand.Record) {
	col := HandColor(rec.Handedness)
	gocv.Rectangle(img, rec.BBox, col, 2)

	for _, c := range connections {
		gocv.Line(img, rec.Pixels[c[0]], rec.Pixels[c[1]], col, 1)
	}
	for i, p := range rec.Pixels {
		if isTip(i) {
			gocv.Circle(img, p, 6, Yellow, -1)
			gocv.PutText(img, fmt.Sprint(i), p.Add(image.Pt(8, 8)), gocv.FontHersheySimplex, 0.4, White, 1)
			continue
		}
		gocv.Circle(img, p, 4, col, -1)
	}

	gocv.Circle(img, rec.Center, 8, Yellow, -1)
	gocv.Circle(img, rec.Center, 10, Yellow, 2)

	gocv.PutText(img, HandLabel(rec), rec.BBox.Min.Sub(image.Pt(0, 10)), gocv.FontHersheySimplex, 0.6, col, 2)
	gocv.PutText(img, fmt.Sprintf("Volume: %.0f%%", rec.Volume), image.Pt(rec.BBox.Min.X, rec.BBox.Max.Y+25),
		gocv.FontHersheySimplex, 0.5, White, 1)
}

func drawContourHand(img *gocv.Mat, rec *hand.Record) {
	outline := gocv.NewPointsVectorFromPoints([][]image.Point{rec.Contour, rec.Hull})
	defer outline.Close()

	if len(rec.Contour) > 0 {
		gocv.DrawContours(img, outline, 0, Green, 2)
	}
	if len(rec.Hull) > 0 {
		gocv.DrawContours(img, outline, 1, Blue, 2)
	}
	gocv.Rectangle(img, rec.BBox, Green, 2)
	gocv.Circle(img, rec.Center, 8, Yellow, -1)
	gocv.PutText(img, HandLabel(rec), rec.BBox.Min.Sub(image.Pt(0, 10)), gocv.FontHersheySimplex, 0.6, Green, 2)
}

// HandLabel is the caption drawn above a hand.
func HandLabel(rec *hand.Record) string {
	if !rec.HasLandmarks() {
		return fmt.Sprintf("%s - %s", rec.Handedness, rec.Gesture.Name)
	}
	return fmt.Sprintf("%s - %s (%.0f%%)", rec.Handedness, rec.Gesture.Name, rec.Gesture.Confidence*100)
}

// DrawTrail connects consecutive trail points.
func DrawTrail(img *gocv.Mat, points []image.Point) {
	for i := 1; i < len(points); i++ {
		gocv.Line(img, points[i-1], points[i], Trail, 1)
	}
}

// MousePosition returns the index fingertip of the first right hand, or of
// the first hand when none is right. Contour records have no fingertip.
func MousePosition(records []hand.Record) (image.Point, bool) {
	pick := -1
	for i := range records {
		if records[i].Handedness == "Right" {
			pick = i
			break
		}
	}
	if pick < 0 && len(records) > 0 {
		pick = 0
	}
	if pick < 0 || !records[pick].HasLandmarks() {
		return image.Point{}, false
	}
	return records[pick].Pixels[detector.IndexTip], true
}

// DrawMouseMarker circles the mouse position.
func DrawMouseMarker(img *gocv.Mat, p image.Point) {
	gocv.Circle(img, p, 15, Cursor, 2)
	gocv.PutText(img, "MOUSE", p.Sub(image.Pt(30, 20)), gocv.FontHersheySimplex, 0.5, Cursor, 2)
}

// GestureCount is one line of the statistics panel.
type GestureCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HUD is the statistics panel in the top-left corner.
type HUD struct {
	FPS      float64
	Hands    int
	Detector string
	Gestures []GestureCount
}

// maxHUDGestures is how many gesture counters the panel lists.
const maxHUDGestures = 5

// DrawHUD draws the statistics panel.
func DrawHUD(img *gocv.Mat, hud HUD) {
	gocv.PutText(img, fmt.Sprintf("FPS: %.1f", hud.FPS), image.Pt(10, 30), gocv.FontHersheySimplex, 1, Green, 2)
	gocv.PutText(img, fmt.Sprintf("Hands Detected: %d", hud.Hands), image.Pt(10, 70), gocv.FontHersheySimplex, 0.7, Green, 2)

	y := 110
	for i, g := range hud.Gestures {
		if i == maxHUDGestures {
			break
		}
		gocv.PutText(img, fmt.Sprintf("%s: %d", g.Name, g.Count), image.Pt(10, y), gocv.FontHersheySimplex, 0.6, White, 1)
		y += 30
	}
	if hud.Detector != "" {
		gocv.PutText(img, hud.Detector, image.Pt(img.Cols()-220, img.Rows()-20), gocv.FontHersheySimplex, 0.5, White, 1)
	}
}
