package render

import (
	"fmt"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
)

// Window shows annotated frames in a HighGUI window.
type Window struct {
	win        *gocv.Window
	fullscreen bool
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays img.
func (w *Window) Show(img *gocv.Mat) {
	w.win.IMShow(*img)
}

// PollKey waits one millisecond for a key press and returns its code, or
// -1 when none was pressed.
func (w *Window) PollKey() int {
	return w.win.WaitKey(1)
}

// ToggleFullscreen switches between fullscreen and normal size.
func (w *Window) ToggleFullscreen() {
	w.fullscreen = !w.fullscreen
	flag := gocv.WindowNormal
	if w.fullscreen {
		flag = gocv.WindowFullscreen
	}
	w.win.SetWindowProperty(gocv.WindowPropertyFullscreen, flag)
}

// Close closes the window.
func (w *Window) Close() error {
	w.win.Close()
	return nil
}

// ScreenshotName is the file name of a screenshot taken at t.
func ScreenshotName(t time.Time) string {
	return fmt.Sprintf("screenshot_%d.png", t.Unix())
}

// SaveScreenshot writes img as a PNG into dir and returns the path.
func SaveScreenshot(dir string, img *gocv.Mat, t time.Time) (string, error) {
	path := filepath.Join(dir, ScreenshotName(t))
	if ok := gocv.IMWrite(path, *img); !ok {
		return "", fmt.Errorf("write screenshot %s", path)
	}
	return path, nil
}

// Mirror flips img horizontally in place.
func Mirror(img *gocv.Mat) {
	gocv.Flip(*img, img, 1)
}
