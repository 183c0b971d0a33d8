package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/control"
)

// ErrUnknownCommand is returned for command names that are not recognised.
var ErrUnknownCommand = errors.New("unknown command")

// Op is a session command.
type Op int

const (
	OpQuit Op = iota
	OpFullscreen
	OpScreenshot
	OpResetCounters
	OpToggleMouse
	OpSwitchMode
	OpClearCanvas
	OpUndoStroke
)

var opNames = map[Op]string{
	OpQuit:          "quit",
	OpFullscreen:    "fullscreen",
	OpScreenshot:    "screenshot",
	OpResetCounters: "reset",
	OpToggleMouse:   "mouse",
	OpSwitchMode:    "mode",
	OpClearCanvas:   "clear",
	OpUndoStroke:    "undo",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is applied by the session loop between frames. Mode is only used
// by OpSwitchMode.
type Command struct {
	Op   Op
	Mode control.Mode
}

func (c Command) String() string {
	if c.Op == OpSwitchMode {
		return "mode:" + c.Mode.Key()
	}
	return c.Op.String()
}

// ParseCommand parses the remote form of a command: an op name such as
// "undo", or "mode:<mode>" where mode is anything control.ParseMode accepts.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(s, "mode:"); ok {
		m, err := control.ParseMode(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpSwitchMode, Mode: m}, nil
	}
	for op, name := range opNames {
		if op != OpSwitchMode && name == s {
			return Command{Op: op}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// KeyCommand maps a key code from the display to a command.
func KeyCommand(key int) (Command, bool) {
	if key < 0 {
		return Command{}, false
	}
	switch rune(key & 0xFF) {
	case 'q':
		return Command{Op: OpQuit}, true
	case 'f':
		return Command{Op: OpFullscreen}, true
	case 's':
		return Command{Op: OpScreenshot}, true
	case 'r':
		return Command{Op: OpResetCounters}, true
	case 'm':
		return Command{Op: OpToggleMouse}, true
	case 'c':
		return Command{Op: OpClearCanvas}, true
	case 'u':
		return Command{Op: OpUndoStroke}, true
	case '1', '2', '3', '4':
		return Command{Op: OpSwitchMode, Mode: control.Mode(key&0xFF - '1')}, true
	}
	return Command{}, false
}
