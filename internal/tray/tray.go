// Package tray provides the system tray menu for switching modes, pausing
// and quitting.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
)

// Origin tags commands produced by the tray menu.
const Origin = "tray"

// Tray represents the system tray application.
type Tray struct {
	submit     func(control.Command)
	onSettings func()
	onExit     func()

	mu     sync.RWMutex
	mode   gesture.Mode
	paused bool

	// Menu items stored for later updates
	menuMode       *systray.MenuItem
	menuPause      *systray.MenuItem
	menuLastAction *systray.MenuItem
}

// New creates a Tray that hands every menu command to submit.
func New(submit func(control.Command)) *Tray {
	return &Tray{submit: submit}
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
// It must be set before Run for the item to appear.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnExit sets the callback run after the tray has shut down.
func (t *Tray) OnExit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// Run starts the system tray application. It must be called from the main
// goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.exit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture mouse")

	t.mu.Lock()
	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Current interaction mode")
	t.menuMode.Disable()
	t.mu.Unlock()

	menuPointer := systray.AddMenuItem("Pointer mode", "Move the cursor with the index finger")
	menuScroll := systray.AddMenuItem("Scroll mode", "Scroll with the index finger")
	systray.AddSeparator()

	t.mu.Lock()
	t.menuPause = systray.AddMenuItem(pauseTitle(t.paused), "Pause or resume gesture control")
	t.menuLastAction = systray.AddMenuItem("Last: none", "Last performed action")
	t.menuLastAction.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	// The dashboard item only exists when something can open it.
	var settingsClicked chan struct{}
	if t.hasSettings() {
		settingsClicked = systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser").ClickedCh
		systray.AddSeparator()
	}

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuPointer.ClickedCh:
				t.send(control.SetMode(gesture.Pointer, Origin))
			case <-menuScroll.ClickedCh:
				t.send(control.SetMode(gesture.Scroll, Origin))
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-settingsClicked:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.send(control.Quit(Origin))
				return
			}
		}
	}()
}

func (t *Tray) exit() {
	t.mu.RLock()
	callback := t.onExit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) send(cmd control.Command) {
	if t.submit != nil {
		t.submit(cmd)
	}
}

// handlePause asks for the opposite of the last known pause state. The
// menu title follows once SetPaused reports the applied state.
func (t *Tray) handlePause() {
	t.mu.RLock()
	paused := t.paused
	t.mu.RUnlock()

	if paused {
		t.send(control.Resume(Origin))
	} else {
		t.send(control.Pause(Origin))
	}
}

func (t *Tray) hasSettings() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onSettings != nil
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetMode updates the mode shown in the menu.
func (t *Tray) SetMode(m gesture.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = m
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(m))
	}
}

// SetPaused updates the pause item.
func (t *Tray) SetPaused(paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.paused = paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
}

// SetLastAction updates the last action display in the menu.
func (t *Tray) SetLastAction(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastAction != nil {
		if name == "" {
			t.menuLastAction.SetTitle("Last: none")
		} else {
			t.menuLastAction.SetTitle("Last: " + name)
		}
	}
}

// Mode returns the last mode reported through SetMode.
func (t *Tray) Mode() gesture.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

// IsPaused returns the last pause state reported through SetPaused.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

func modeTitle(m gesture.Mode) string {
	return "Mode: " + m.String()
}

func pauseTitle(paused bool) string {
	if paused {
		return "○ Paused (click to resume)"
	}
	return "● Active (click to pause)"
}
