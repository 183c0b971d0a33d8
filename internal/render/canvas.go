// Package render draws hands, trails and control mode widgets onto frames.
package render

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// MatCanvas is a drawing surface backed by a BGR Mat. It implements
// control.Canvas.
type MatCanvas struct {
	mu  sync.Mutex
	mat gocv.Mat
}

// NewMatCanvas creates a black canvas of the given size.
func NewMatCanvas(width, height int) *MatCanvas {
	return &MatCanvas{
		mat: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3),
	}
}

// Line paints a segment.
func (c *MatCanvas) Line(from, to image.Point, col color.RGBA, thickness int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gocv.Line(&c.mat, from, to, col, thickness)
}

// Clear paints the canvas black.
func (c *MatCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Blend mixes the canvas into frame, keeping alpha of the frame.
// Frames of a different size are left untouched.
func (c *MatCanvas) Blend(frame *gocv.Mat, alpha float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if frame.Rows() != c.mat.Rows() || frame.Cols() != c.mat.Cols() {
		return
	}
	gocv.AddWeighted(*frame, alpha, c.mat, 1-alpha, 0, frame)
}

// Snapshot returns a copy of the canvas; the caller closes it.
func (c *MatCanvas) Snapshot() gocv.Mat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mat.Clone()
}

// Close releases the canvas.
func (c *MatCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mat.Close()
}
