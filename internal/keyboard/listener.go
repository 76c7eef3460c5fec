// Package keyboard turns global hotkeys into control commands.
package keyboard

import (
	"errors"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
)

// Origin tags commands produced here.
const Origin = "keyboard"

// Binding maps a key combination to a command. Keys lists the key first,
// then its modifiers, as gohook expects.
type Binding struct {
	Keys    []string
	Command control.Command
}

// Bindings builds the pointer, scroll and quit bindings from cfg.
func Bindings(cfg config.KeyboardConfig) []Binding {
	return []Binding{
		{Keys: cfg.Pointer, Command: control.SetMode(gesture.Pointer, Origin)},
		{Keys: cfg.Scroll, Command: control.SetMode(gesture.Scroll, Origin)},
		{Keys: cfg.Quit, Command: control.Quit(Origin)},
	}
}

// Listener runs the global keyboard hook. gohook keeps process-wide
// state, so only one Listener may run at a time.
type Listener struct {
	bindings []Binding
	submit   func(control.Command)
	logger   *slog.Logger

	mu   sync.Mutex
	done chan struct{}
}

// NewListener returns a listener that hands each triggered command to submit.
func NewListener(bindings []Binding, submit func(control.Command), logger *slog.Logger) *Listener {
	return &Listener{
		bindings: bindings,
		submit:   submit,
		logger:   logger,
	}
}

// Start registers the bindings and begins processing key events in the
// background.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		return errors.New("keyboard listener already running")
	}

	for _, b := range l.bindings {
		if len(b.Keys) == 0 {
			continue
		}
		hook.Register(hook.KeyDown, b.Keys, func(hook.Event) {
			l.trigger(b)
		})
	}

	events := hook.Start()
	done := make(chan struct{})
	l.done = done
	go func() {
		<-hook.Process(events)
		close(done)
	}()

	l.logger.Info("keyboard hotkeys active", "bindings", len(l.bindings))
	return nil
}

func (l *Listener) trigger(b Binding) {
	l.logger.Debug("hotkey", "keys", b.Keys, "command", b.Command.Kind.String())
	l.submit(b.Command)
}

// Stop ends the hook and waits for event processing to finish.
func (l *Listener) Stop() {
	l.mu.Lock()
	done := l.done
	l.done = nil
	l.mu.Unlock()

	if done == nil {
		return
	}
	hook.End()
	<-done
}
