// Package app runs the control loop: one goroutine reads observations,
// drives the interaction state machine and applies override commands
// between ticks.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// commandQueue bounds how many overrides may wait for the next tick boundary.
const commandQueue = 16

// ErrQueueFull is returned by Submit when the loop is not keeping up.
var ErrQueueFull = errors.New("command queue full")

// Config holds the collaborators of an App.
type Config struct {
	Source  Source
	Machine *control.Machine
	// Store is optional; without it nothing is persisted.
	Store *store.Store

	// SourceName and SinkName label the session.
	SourceName string
	SinkName   string

	Logger *slog.Logger
	Now    func() time.Time
}

// Action is one discrete thing the loop did: a classified gesture or an
// applied override. Subscribers and the journal receive every Action.
type Action struct {
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
	Mode   string    `json:"mode"`
	DX     int       `json:"dx,omitempty"`
	DY     int       `json:"dy,omitempty"`
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Origin string    `json:"origin"`
}

// Status is a snapshot of the loop for the API and the tray.
type Status struct {
	Running     bool               `json:"running"`
	Paused      bool               `json:"paused"`
	Mode        gesture.Mode       `json:"mode"`
	HandVisible bool               `json:"hand_visible"`
	CursorX     int                `json:"cursor_x"`
	CursorY     int                `json:"cursor_y"`
	Ticks       int64              `json:"ticks"`
	Rate        int                `json:"fps"`
	SessionID   string             `json:"session_id,omitempty"`
	Source      string             `json:"source"`
	Screen      gesture.Dimensions `json:"screen"`
	Calibration store.Calibration  `json:"calibration"`
	LastAction  *Action            `json:"last_action,omitempty"`
}

// App is the main application: it owns the loop goroutine, the machine
// and the subscriber list.
type App struct {
	cfg      Config
	logger   *slog.Logger
	commands chan control.Command

	mu     sync.RWMutex
	status Status

	subMu   sync.Mutex
	subs    map[int]chan Action
	nextSub int

	sessionID string
}

// New creates an App. Run starts it.
func New(cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	a := &App{
		cfg:      cfg,
		logger:   cfg.Logger,
		commands: make(chan control.Command, commandQueue),
		subs:     make(map[int]chan Action),
	}
	a.status = Status{
		Mode:        cfg.Machine.Mode(),
		Source:      cfg.SourceName,
		Screen:      cfg.Machine.Screen(),
		Calibration: store.CalibrationFrom(cfg.Machine.Thresholds()),
		Rate:        cfg.Source.Rate(),
	}
	return a
}

// Submit queues an override for the next tick boundary. It never blocks.
func (a *App) Submit(cmd control.Command) error {
	select {
	case a.commands <- cmd:
		return nil
	default:
		a.logger.Warn("dropping command, queue full", "command", cmd.String())
		return ErrQueueFull
	}
}

// Status returns the latest snapshot.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.status
	if s.LastAction != nil {
		last := *s.LastAction
		s.LastAction = &last
	}
	return s
}

// Subscribe returns a channel receiving every Action and a function that
// ends the subscription. A subscriber that falls behind misses actions.
func (a *App) Subscribe(buffer int) (<-chan Action, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Action, buffer)

	a.subMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, id)
			a.subMu.Unlock()
			close(ch)
		})
	}
}

// Run drives the loop until ctx is cancelled, a Quit command arrives or
// the source reports capture.ErrEndOfStream. It closes the source on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.cfg.Source.Close(); err != nil {
			a.logger.Warn("closing source", "error", err)
		}
	}()

	a.beginSession()
	defer a.endSession()

	rate := a.cfg.Source.Rate()
	ticker := time.NewTicker(interval(rate))
	defer ticker.Stop()

	a.logger.Info("control loop started", "source", a.cfg.SourceName, "fps", rate)
	defer a.logger.Info("control loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-a.commands:
			if a.apply(cmd) {
				return nil
			}
		case <-ticker.C:
			if done := a.tick(ctx); done {
				return nil
			}
			if r := a.cfg.Source.Rate(); r != rate {
				rate = r
				ticker.Reset(interval(rate))
			}
		}
	}
}

func interval(fps int) time.Duration {
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// tick runs one observation through the machine. It reports whether the
// loop should stop.
func (a *App) tick(ctx context.Context) bool {
	obs, err := a.cfg.Source.Next(ctx)
	switch {
	case err == nil:
	case errors.Is(err, capture.ErrEndOfStream):
		a.logger.Info("source exhausted")
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, detector.ErrMalformedLandmarks):
		a.logger.Warn("malformed landmarks, treating tick as no hand", "error", err)
		obs = detector.NoHand()
	default:
		a.logger.Warn("skipping tick", "error", err)
		return false
	}

	now := a.cfg.Now()
	res := a.cfg.Machine.Tick(obs, now)

	a.mu.Lock()
	a.status.Ticks++
	a.status.Mode = res.Mode
	a.status.HandVisible = res.Hand
	a.status.Rate = a.cfg.Source.Rate()
	if res.Moved {
		a.status.CursorX, a.status.CursorY = res.X, res.Y
	}
	cx, cy := a.status.CursorX, a.status.CursorY
	a.mu.Unlock()

	for _, e := range res.Events {
		a.record(Action{
			At:     now,
			Kind:   e.Kind.String(),
			Mode:   res.Mode.String(),
			DX:     e.DX,
			DY:     e.DY,
			X:      cx,
			Y:      cy,
			Origin: "gesture",
		})
	}
	return false
}

// apply executes an override. It reports whether the loop should stop.
// Thresholds are persisted only once the machine has accepted them.
func (a *App) apply(cmd control.Command) bool {
	if err := a.cfg.Machine.Apply(cmd); err != nil {
		a.logger.Warn("rejected command", "command", cmd.String(), "error", err)
		return false
	}
	a.logger.Info("command applied", "command", cmd.Kind.String(), "origin", cmd.Origin)

	if cmd.Kind == control.CmdSetThresholds && a.cfg.Store != nil {
		if err := a.cfg.Store.Settings().SaveThresholds(a.cfg.Machine.Thresholds()); err != nil {
			a.logger.Warn("calibration applied but not saved", "error", err)
		}
	}

	m := a.cfg.Machine
	a.mu.Lock()
	a.status.Mode = m.Mode()
	a.status.Paused = m.Paused()
	a.status.Calibration = store.CalibrationFrom(m.Thresholds())
	cx, cy := a.status.CursorX, a.status.CursorY
	a.mu.Unlock()

	a.record(Action{
		At:     a.cfg.Now(),
		Kind:   cmd.Kind.String(),
		Mode:   m.Mode().String(),
		X:      cx,
		Y:      cy,
		Origin: cmd.Origin,
	})

	return cmd.Kind == control.CmdQuit
}

func (a *App) record(act Action) {
	a.logger.Debug("action", "kind", act.Kind, "mode", act.Mode, "dx", act.DX, "dy", act.DY, "origin", act.Origin)

	a.mu.Lock()
	last := act
	a.status.LastAction = &last
	a.mu.Unlock()

	if a.cfg.Store != nil && a.sessionID != "" {
		err := a.cfg.Store.Journal().Append(&store.Entry{
			SessionID: a.sessionID,
			At:        act.At,
			Kind:      act.Kind,
			Mode:      act.Mode,
			DX:        act.DX,
			DY:        act.DY,
			X:         act.X,
			Y:         act.Y,
			Origin:    act.Origin,
		})
		if err != nil {
			a.logger.Warn("journal append failed", "error", err)
		}
	}

	a.subMu.Lock()
	defer a.subMu.Unlock()
	for _, ch := range a.subs {
		select {
		case ch <- act:
		default:
		}
	}
}

func (a *App) beginSession() {
	a.mu.Lock()
	a.status.Running = true
	a.mu.Unlock()

	if a.cfg.Store == nil {
		return
	}
	sess, err := a.cfg.Store.Sessions().Start(a.cfg.SourceName, a.cfg.SinkName)
	if err != nil {
		a.logger.Warn("could not start session", "error", err)
		return
	}
	a.sessionID = sess.ID

	a.mu.Lock()
	a.status.SessionID = sess.ID
	a.mu.Unlock()
}

func (a *App) endSession() {
	a.mu.Lock()
	a.status.Running = false
	ticks := a.status.Ticks
	a.mu.Unlock()

	if a.cfg.Store == nil || a.sessionID == "" {
		return
	}
	if err := a.cfg.Store.Sessions().End(a.sessionID, ticks); err != nil {
		a.logger.Warn("could not end session", "error", err)
	}
}
