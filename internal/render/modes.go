package render

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/control"
)

// Volume bar geometry.
const (
	volumeBarWidth  = 200
	volumeBarHeight = 30
	canvasAlpha     = 0.7
)

// DrawMode draws the widgets of the active mode and the mode caption.
// sig may be nil when no hand drove the dispatcher this frame.
func DrawMode(img *gocv.Mat, d *control.Dispatcher, sig *control.Signal, canvas *MatCanvas) {
	switch d.Mode() {
	case control.ModeDrawing:
		if canvas != nil {
			canvas.Blend(img, canvasAlpha)
		}
	case control.ModeKeyboard:
		DrawKeyboard(img, d.Keyboard)
	case control.ModeMouse:
		if sig != nil && sig.Mouse != nil {
			gocv.Circle(img, sig.Mouse.Cursor, 10, Cursor, 2)
			gocv.Circle(img, sig.Mouse.Cursor, 5, Cursor, -1)
		}
	case control.ModeVolume:
		if sig != nil && sig.Volume != nil {
			DrawVolumeBar(img, sig.Volume.Level)
		}
	}

	gocv.PutText(img, "Mode: "+d.Mode().String(), image.Pt(10, img.Rows()-20), gocv.FontHersheySimplex, 0.7, Yellow, 2)
}

// VolumeBar returns the outline and the filled part of the volume bar for
// a frame of the given width.
func VolumeBar(frameWidth, level int) (outline, fill image.Rectangle) {
	level = max(0, min(100, level))
	origin := image.Pt(frameWidth-volumeBarWidth-20, 30)
	outline = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(volumeBarWidth, volumeBarHeight))}
	fill = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(volumeBarWidth*level/100, volumeBarHeight))}
	return outline, fill
}

// DrawVolumeBar draws the volume level in the top-right corner.
func DrawVolumeBar(img *gocv.Mat, level int) {
	outline, fill := VolumeBar(img.Cols(), level)
	gocv.Rectangle(img, outline, Grey, -1)
	gocv.Rectangle(img, fill, Green, -1)
	gocv.Rectangle(img, outline, White, 2)
	gocv.PutText(img, fmt.Sprintf("Volume: %d%%", level), outline.Min.Sub(image.Pt(0, 10)), gocv.FontHersheySimplex, 0.6, White, 1)
}

// KeyRect returns the on-screen box of the key at row, col.
func KeyRect(k *control.Keyboard, row, col int) image.Rectangle {
	w := k.KeyWidth()
	origin := k.Anchor.Add(image.Pt(col*w, row*control.KeyRowPitch))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, control.KeyHeight))}
}

// DrawKeyboard draws the key grid with the hovered key highlighted and the
// typed text below it.
func DrawKeyboard(img *gocv.Mat, k *control.Keyboard) {
	hover := k.Hover()
	for row, keys := range control.KeyLayout {
		for col, key := range keys {
			r := KeyRect(k, row, col)
			c, thickness := White, 1
			if key != "" && key == hover {
				c, thickness = Green, 2
			}
			gocv.Rectangle(img, r, c, thickness)
			gocv.PutText(img, key, r.Min.Add(image.Pt(10, 28)), gocv.FontHersheySimplex, 0.5, c, 1)
		}
	}

	top := k.Anchor.Y + len(control.KeyLayout)*control.KeyRowPitch
	box := image.Rect(k.Anchor.X, top, k.Anchor.X+k.FrameWidth, top+40)
	gocv.Rectangle(img, box, Grey, -1)

	// PutText cannot break lines; show the last line only.
	text := k.Text()
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	gocv.PutText(img, "Input: "+text, image.Pt(k.Anchor.X+10, top+30), gocv.FontHersheySimplex, 0.6, White, 1)
}
