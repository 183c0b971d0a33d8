package control

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// ErrNoLandmarks is returned when a record without landmarks is dispatched.
var ErrNoLandmarks = errors.New("record has no landmarks")

// Signal is the output of the active mode for one frame. Exactly one of the
// mode fields is set, matching Mode.
type Signal struct {
	Mode     Mode            `json:"mode"`
	HandID   int             `json:"hand_id"`
	Gesture  string          `json:"gesture"`
	Mouse    *MouseSignal    `json:"mouse,omitempty"`
	Volume   *VolumeSignal   `json:"volume,omitempty"`
	Drawing  *DrawingSignal  `json:"drawing,omitempty"`
	Keyboard *KeyboardSignal `json:"keyboard,omitempty"`
}

// Dispatcher routes hand records to the active mode. Every mode keeps its
// state across switches.
type Dispatcher struct {
	Mouse    *Mouse
	Volume   *Volume
	Drawing  *Drawing
	Keyboard *Keyboard

	mode Mode
}

// NewDispatcher creates a dispatcher starting in mouse mode.
func NewDispatcher(frameWidth int, canvas Canvas) *Dispatcher {
	return &Dispatcher{
		Mouse:    NewMouse(),
		Volume:   NewVolume(),
		Drawing:  NewDrawing(canvas),
		Keyboard: NewKeyboard(frameWidth),
		mode:     ModeMouse,
	}
}

// Mode returns the active mode.
func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// Switch makes m the active mode without resetting any mode state.
func (d *Dispatcher) Switch(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	if m != d.mode {
		log.Printf("switched to %s", m)
	}
	d.mode = m
	return nil
}

// Process feeds one record to the active mode.
func (d *Dispatcher) Process(rec *hand.Record, now time.Time) (Signal, error) {
	if rec == nil || !rec.HasLandmarks() {
		return Signal{}, ErrNoLandmarks
	}

	sig := Signal{Mode: d.mode, HandID: rec.ID, Gesture: rec.Gesture.Name}
	switch d.mode {
	case ModeMouse:
		s := d.Mouse.Update(rec, now)
		sig.Mouse = &s
	case ModeVolume:
		s := d.Volume.Update(rec, now)
		sig.Volume = &s
	case ModeDrawing:
		s := d.Drawing.Update(rec, now)
		sig.Drawing = &s
	case ModeKeyboard:
		s := d.Keyboard.Update(rec, now)
		sig.Keyboard = &s
	}
	return sig, nil
}

// Undo removes the last drawing segment.
func (d *Dispatcher) Undo() bool {
	return d.Drawing.Undo()
}

// Clear blanks the drawing canvas.
func (d *Dispatcher) Clear() {
	d.Drawing.Clear()
}
