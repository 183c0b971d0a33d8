// Package testdata builds synthetic camera frames for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame size used by the fixtures unless a test asks otherwise.
const (
	Width  = 640
	Height = 480
)

// Skin is a BGR colour inside the fallback detector's HSV skin range.
var Skin = color.RGBA{R: 200, G: 120, B: 80}

// BlankFrame returns a black BGR frame.
func BlankFrame(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
}

// SkinFrame returns a black Width x Height frame with each rect filled
// in skin colour.
func SkinFrame(rects ...image.Rectangle) gocv.Mat {
	frame := BlankFrame(Width, Height)
	for _, r := range rects {
		gocv.Rectangle(&frame, r, Skin, -1)
	}
	return frame
}

// Sequence returns n frames produced by newFrame. The caller closes them,
// e.g. with CloseAll.
func Sequence(n int, newFrame func() gocv.Mat) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := newFrame()
		frames[i] = &m
	}
	return frames
}

// CloseAll releases every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
