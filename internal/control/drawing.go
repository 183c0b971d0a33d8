package control

import (
	"image"
	"image/color"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// Canvas receives the strokes committed by the drawing mode.
type Canvas interface {
	Line(from, to image.Point, c color.RGBA, thickness int)
	Clear()
}

// Segment is one committed brush stroke.
type Segment struct {
	From      image.Point `json:"from"`
	To        image.Point `json:"to"`
	Color     color.RGBA  `json:"color"`
	Thickness int         `json:"thickness"`
}

// DrawingSignal is the per-frame output of the drawing mode.
type DrawingSignal struct {
	Active   bool        `json:"active"`
	Position image.Point `json:"position"`
	Strokes  int         `json:"strokes"`
}

// Brush defaults: yellow, 5 px.
var (
	DefaultBrushColor     = color.RGBA{R: 255, G: 255, A: 255}
	DefaultBrushThickness = 5
)

// Drawing paints with the index fingertip while the index finger is raised
// and the middle finger is not.
type Drawing struct {
	Color     color.RGBA
	Thickness int

	canvas  Canvas
	prev    image.Point
	hasPrev bool
	strokes []Segment
}

// NewDrawing creates a drawing mode painting on canvas. canvas may be nil,
// in which case only the stroke log is kept.
func NewDrawing(canvas Canvas) *Drawing {
	return &Drawing{
		Color:     DefaultBrushColor,
		Thickness: DefaultBrushThickness,
		canvas:    canvas,
	}
}

// SetCanvas replaces the canvas and repaints the stroke log onto it.
func (d *Drawing) SetCanvas(canvas Canvas) {
	d.canvas = canvas
	d.redraw()
}

// Update computes the drawing signal for one frame and commits a segment
// when the stroke continues from the previous frame.
func (d *Drawing) Update(rec *hand.Record, _ time.Time) DrawingSignal {
	tip := rec.Pixels[detector.IndexTip]
	active := drawingActive(rec.Landmarks)

	if active && d.hasPrev {
		seg := Segment{From: d.prev, To: tip, Color: d.Color, Thickness: d.Thickness}
		d.strokes = append(d.strokes, seg)
		if d.canvas != nil {
			d.canvas.Line(seg.From, seg.To, seg.Color, seg.Thickness)
		}
	}

	d.prev, d.hasPrev = tip, active

	return DrawingSignal{Active: active, Position: tip, Strokes: len(d.strokes)}
}

func drawingActive(lm []detector.Point3D) bool {
	indexUp := lm[detector.IndexTip].Y < lm[detector.IndexDIP].Y
	middleUp := lm[detector.MiddleTip].Y < lm[detector.MiddlePIP].Y
	return indexUp && !middleUp
}

// Undo removes the last segment and repaints the canvas. It reports whether
// there was a segment to remove.
func (d *Drawing) Undo() bool {
	if len(d.strokes) == 0 {
		return false
	}
	d.strokes = d.strokes[:len(d.strokes)-1]
	d.redraw()
	return true
}

// Clear drops every segment and blanks the canvas.
func (d *Drawing) Clear() {
	d.strokes = d.strokes[:0]
	if d.canvas != nil {
		d.canvas.Clear()
	}
}

// Strokes returns a copy of the stroke log, oldest first.
func (d *Drawing) Strokes() []Segment {
	out := make([]Segment, len(d.strokes))
	copy(out, d.strokes)
	return out
}

func (d *Drawing) redraw() {
	if d.canvas == nil {
		return
	}
	d.canvas.Clear()
	for _, s := range d.strokes {
		d.canvas.Line(s.From, s.To, s.Color, s.Thickness)
	}
}
