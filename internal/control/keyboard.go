package control

import (
	"image"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// Special keys.
const (
	KeySpace     = " "
	KeyBackspace = "<-"
	KeyEnter     = "ENTER"
)

// KeyLayout is the on-screen keyboard, top row first. The empty label is a
// dead slot.
var KeyLayout = [][]string{
	{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P"},
	{"A", "S", "D", "F", "G", "H", "J", "K", "L", KeySpace},
	{"Z", "X", "C", "V", "B", "N", "M", KeyBackspace, KeyEnter, ""},
}

const (
	// KeyColumns is the number of keys across the frame width.
	KeyColumns = 10
	// KeyRowPitch is the vertical distance between key rows, in pixels.
	KeyRowPitch = 50
	// KeyHeight is the drawn height of a key.
	KeyHeight = 40
)

// KeyboardSignal is the per-frame output of the keyboard mode.
type KeyboardSignal struct {
	Text    string `json:"text"`
	Hover   string `json:"hover,omitempty"`
	Clicked string `json:"clicked,omitempty"`
}

// Keyboard types by hovering the index fingertip over a key and pinching.
type Keyboard struct {
	// Anchor is the top-left corner of the layout in frame pixels.
	Anchor         image.Point
	FrameWidth     int
	ClickThreshold float64
	Debounce       time.Duration

	text      strings.Builder
	hover     string
	lastClick time.Time
}

// NewKeyboard creates a keyboard spanning a frame of the given width.
func NewKeyboard(frameWidth int) *Keyboard {
	return &Keyboard{
		FrameWidth:     frameWidth,
		ClickThreshold: 0.05,
		Debounce:       500 * time.Millisecond,
	}
}

// KeyWidth is the width of one key in pixels.
func (k *Keyboard) KeyWidth() int {
	return k.FrameWidth / KeyColumns
}

// KeyAt returns the label under p, or "" when p is off the layout.
func (k *Keyboard) KeyAt(p image.Point) string {
	width := k.KeyWidth()
	dx, dy := p.X-k.Anchor.X, p.Y-k.Anchor.Y
	if width <= 0 || dx < 0 || dy < 0 {
		return ""
	}

	row, col := dy/KeyRowPitch, dx/width
	if row >= len(KeyLayout) || col >= len(KeyLayout[row]) {
		return ""
	}
	return KeyLayout[row][col]
}

// Update computes the keyboard signal for one frame.
//
// Any pinch outside the debounce window restarts it, even when no key is
// hovered.
func (k *Keyboard) Update(rec *hand.Record, now time.Time) KeyboardSignal {
	k.hover = k.KeyAt(rec.Pixels[detector.IndexTip])

	var clicked string
	pinched := rec.Distance(detector.ThumbTip, detector.IndexTip) < k.ClickThreshold
	if pinched && (k.lastClick.IsZero() || now.Sub(k.lastClick) >= k.Debounce) {
		k.lastClick = now
		if k.hover != "" {
			clicked = k.hover
			k.press(clicked)
		}
	}

	return KeyboardSignal{Text: k.text.String(), Hover: k.hover, Clicked: clicked}
}

func (k *Keyboard) press(key string) {
	switch key {
	case KeyBackspace:
		text := k.text.String()
		_, size := utf8.DecodeLastRuneInString(text)
		k.text.Reset()
		k.text.WriteString(text[:len(text)-size])
	case KeyEnter:
		k.text.WriteByte('\n')
	default:
		k.text.WriteString(key)
	}
}

// Text returns everything typed so far.
func (k *Keyboard) Text() string {
	return k.text.String()
}

// Hover returns the key hovered in the last frame.
func (k *Keyboard) Hover() string {
	return k.hover
}
