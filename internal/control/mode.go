// Package control turns hand records into mouse, volume, drawing and
// keyboard signals.
package control

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is an interpretation of the hand as a control surface.
type Mode int

const (
	ModeMouse Mode = iota
	ModeVolume
	ModeDrawing
	ModeKeyboard
	numModes
)

// ErrUnknownMode is returned for mode names and values outside the known set.
var ErrUnknownMode = errors.New("unknown mode")

var modeKeys = [numModes]string{"mouse", "volume", "drawing", "keyboard"}

var modeTitles = [numModes]string{"Mouse Control", "Volume Control", "Virtual Drawing", "Virtual Keyboard"}

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{ModeMouse, ModeVolume, ModeDrawing, ModeKeyboard}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= 0 && m < numModes
}

// String returns the display title, e.g. "Mouse Control".
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeTitles[m]
}

// Key returns the short lower-case name used on the wire, e.g. "mouse".
func (m Mode) Key() string {
	if !m.Valid() {
		return ""
	}
	return modeKeys[m]
}

// MarshalText encodes the mode by its key.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.Key()), nil
}

// UnmarshalText accepts anything ParseMode does.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode accepts a key ("volume"), a title ("Volume Control") or a
// one-based menu number ("2").
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for i := Mode(0); i < numModes; i++ {
		if strings.EqualFold(s, modeKeys[i]) || strings.EqualFold(s, modeTitles[i]) {
			return i, nil
		}
	}
	if len(s) == 1 && s[0] >= '1' && s[0] < '1'+byte(numModes) {
		return Mode(s[0] - '1'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
