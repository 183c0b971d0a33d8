package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/publish"
)

func TestTray_HandleMode(t *testing.T) {
	tr := New(control.ModeMouse)

	var got []control.Mode
	tr.OnMode(func(m control.Mode) { got = append(got, m) })

	tr.handleMode(control.ModeDrawing)
	tr.handleMode(control.ModeKeyboard)

	assert.Equal(t, []control.Mode{control.ModeDrawing, control.ModeKeyboard}, got)
	assert.Equal(t, control.ModeKeyboard, tr.Mode())
}

func TestTray_HandleCommand(t *testing.T) {
	tr := New(control.ModeMouse)

	// No callback registered yet.
	tr.handleCommand(CommandUndo)

	var got []string
	tr.OnCommand(func(name string) { got = append(got, name) })
	tr.handleCommand(CommandUndo)
	tr.handleCommand(CommandClear)
	tr.handleCommand(CommandReset)

	assert.Equal(t, []string{"undo", "clear", "reset"}, got)
}

func TestTray_HandleDashboard(t *testing.T) {
	tr := New(control.ModeMouse)

	opened := 0
	tr.OnDashboard(func() { opened++ })
	tr.handleDashboard()

	assert.Equal(t, 1, opened)
}

func TestTray_SetModeWithoutMenu(t *testing.T) {
	tr := New(control.ModeMouse)

	tr.SetMode(control.ModeVolume)
	tr.SetLastGesture("Fist")

	assert.Equal(t, control.ModeVolume, tr.Mode())
}

func TestTray_Publish(t *testing.T) {
	tr := New(control.ModeMouse)

	assert.NoError(t, tr.Publish(publish.KindSignal, control.Signal{Mode: control.ModeVolume, Gesture: "Fist"}))
	assert.Equal(t, control.ModeVolume, tr.Mode())
	assert.Equal(t, "Fist", tr.LastGesture())

	// Summaries and foreign values are ignored.
	assert.NoError(t, tr.Publish(publish.KindSummary, control.Signal{Mode: control.ModeKeyboard}))
	assert.NoError(t, tr.Publish(publish.KindSignal, "not a signal"))
	assert.Equal(t, control.ModeVolume, tr.Mode())
	assert.NoError(t, tr.Close())
}
