// Package tray provides a system tray menu for switching control modes and
// issuing session commands.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/publish"
)

// Commands offered in the menu, by their session command names.
const (
	CommandClear = "clear"
	CommandUndo  = "undo"
	CommandReset = "reset"
)

// Tray represents the system tray application.
type Tray struct {
	onMode      func(m control.Mode)
	onCommand   func(name string)
	onDashboard func()
	onQuit      func()
	mode        control.Mode
	lastGesture string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuModes       map[control.Mode]*systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray showing mode as active.
func New(mode control.Mode) *Tray {
	return &Tray{mode: mode}
}

// OnMode sets the callback invoked when a mode is picked from the menu.
func (t *Tray) OnMode(fn func(m control.Mode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnCommand sets the callback invoked with a command name (see the Command
// constants).
func (t *Tray) OnCommand(fn func(name string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnDashboard sets the callback invoked by the dashboard menu item.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady builds the menu.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuModes = make(map[control.Mode]*systray.MenuItem)
	for _, m := range control.Modes() {
		item := systray.AddMenuItem(m.String(), "Switch to "+m.String())
		t.menuModes[m] = item
	}
	t.refreshModes()
	t.mu.Unlock()
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last detected gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuUndo := systray.AddMenuItem("Undo Stroke", "Remove the last drawing segment")
	menuClear := systray.AddMenuItem("Clear Canvas", "Erase the drawing")
	menuReset := systray.AddMenuItem("Reset Counters", "Reset gesture statistics")
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	for m, item := range t.menuModes {
		go func() {
			for range item.ClickedCh {
				t.handleMode(m)
			}
		}()
	}

	go func() {
		for {
			select {
			case <-menuUndo.ClickedCh:
				t.handleCommand(CommandUndo)
			case <-menuClear.ClickedCh:
				t.handleCommand(CommandClear)
			case <-menuReset.ClickedCh:
				t.handleCommand(CommandReset)
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// refreshModes checks the active mode; callers hold t.mu.
func (t *Tray) refreshModes() {
	for m, item := range t.menuModes {
		if m == t.mode {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// handleMode marks m active and forwards it.
func (t *Tray) handleMode(m control.Mode) {
	t.mu.Lock()
	t.mode = m
	t.refreshModes()
	callback := t.onMode
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(m)
	}
}

func (t *Tray) handleCommand(name string) {
	t.mu.RLock()
	callback := t.onCommand
	t.mu.RUnlock()

	if callback != nil {
		callback(name)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetMode updates the checked mode, e.g. after a switch from the keyboard.
func (t *Tray) SetMode(m control.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = m
	t.refreshModes()
}

// Mode returns the mode currently checked in the menu.
func (t *Tray) Mode() control.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name == t.lastGesture {
		return
	}
	t.lastGesture = name

	if t.menuLastGesture != nil {
		if name == "" {
			t.menuLastGesture.SetTitle("Last: none")
		} else {
			t.menuLastGesture.SetTitle("Last: " + name)
		}
	}
}

// LastGesture returns the gesture shown in the menu.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastGesture
}

// Publish keeps the menu in step with the session: signals update the
// checked mode and the last gesture. It implements publish.Sink.
func (t *Tray) Publish(kind string, v any) error {
	if kind != publish.KindSignal {
		return nil
	}
	sig, ok := v.(control.Signal)
	if !ok {
		return nil
	}
	if sig.Mode != t.Mode() {
		t.SetMode(sig.Mode)
	}
	t.SetLastGesture(sig.Gesture)
	return nil
}

// Close is a no-op; use Quit to remove the icon.
func (t *Tray) Close() error {
	return nil
}
