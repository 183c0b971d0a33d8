package control

import (
	"image"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// MouseSignal is the per-frame output of the mouse mode.
type MouseSignal struct {
	Cursor      image.Point `json:"cursor"`
	LeftClick   bool        `json:"left_click"`
	RightClick  bool        `json:"right_click"`
	DoubleClick bool        `json:"double_click"`
	Scroll      int         `json:"scroll"`
}

// Mouse follows the index fingertip and reads pinches as clicks.
type Mouse struct {
	LeftClickThreshold  float64
	RightClickThreshold float64
	DoubleClickWindow   time.Duration

	x, y     *EMA
	lastLeft time.Time
}

// NewMouse creates a mouse mode with default thresholds.
func NewMouse() *Mouse {
	return &Mouse{
		LeftClickThreshold:  0.05,
		RightClickThreshold: 0.08,
		DoubleClickWindow:   300 * time.Millisecond,
		x:                   NewEMA(0.7),
		y:                   NewEMA(0.7),
	}
}

// SetSmoothing changes the weight kept from the previous position. The
// current cursor is kept.
func (m *Mouse) SetSmoothing(retain float64) {
	m.x.Retain, m.y.Retain = retain, retain
}

// Update computes the mouse signal for one frame.
//
// The left click timestamp is refreshed on every frame the pinch holds, not
// only when it starts, so a held pinch keeps reporting double clicks.
func (m *Mouse) Update(rec *hand.Record, now time.Time) MouseSignal {
	tip := rec.Pixels[detector.IndexTip]

	sig := MouseSignal{
		Cursor: image.Pt(
			int(m.x.Update(float64(tip.X))),
			int(m.y.Update(float64(tip.Y))),
		),
	}

	if rec.Distance(detector.ThumbTip, detector.IndexTip) < m.LeftClickThreshold {
		sig.LeftClick = true
		if !m.lastLeft.IsZero() && now.Sub(m.lastLeft) < m.DoubleClickWindow {
			sig.DoubleClick = true
		}
		m.lastLeft = now
	}

	if rec.Distance(detector.ThumbTip, detector.MiddleTip) < m.RightClickThreshold {
		sig.RightClick = true
	}

	return sig
}

// Cursor returns the smoothed cursor position.
func (m *Mouse) Cursor() image.Point {
	return image.Pt(int(m.x.Value()), int(m.y.Value()))
}
