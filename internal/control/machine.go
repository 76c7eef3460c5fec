package control

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// TickResult describes what one tick did.
type TickResult struct {
	// Hand is false for no-hand and paused ticks, which change nothing.
	Hand bool
	// Events are the classified gestures, in evaluation order.
	Events []gesture.Event
	// Mode is the mode after the tick.
	Mode gesture.Mode
	// Moved reports whether MoveCursor was issued, to (X, Y).
	Moved bool
	X, Y  int
}

// Machine is the interaction state machine. It is not safe for concurrent
// use: one goroutine owns it and feeds it ticks and commands in order.
type Machine struct {
	sink       Sink
	screen     gesture.Dimensions
	classifier *gesture.Classifier
	smoother   *gesture.Smoother

	mode   gesture.Mode
	state  gesture.DebounceState
	paused bool
}

// NewMachine returns a machine in pointer mode with an empty history,
// mapping the unit square onto screen.
func NewMachine(sink Sink, screen gesture.Dimensions, th gesture.Thresholds) (*Machine, error) {
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, fmt.Errorf("invalid screen size %dx%d", screen.Width, screen.Height)
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return &Machine{
		sink:       sink,
		screen:     screen,
		classifier: gesture.NewClassifier(th),
		smoother:   gesture.NewSmoother(th.HistoryLength),
		mode:       gesture.Pointer,
	}, nil
}

// Tick processes one observation taken at now.
//
// The cursor target is pushed into the history on every hand tick, but the
// cursor only moves when the tick started in pointer mode. Clicks are
// always dispatched. Scroll steps are dispatched when the mode after any
// toggle in this tick is scroll.
func (m *Machine) Tick(obs detector.Observation, now time.Time) TickResult {
	res := TickResult{Mode: m.mode}

	hand, ok := obs.Hand()
	if !ok || m.paused {
		return res
	}
	res.Hand = true

	x, y := m.smoother.PushAndAverage(m.target(hand))
	if m.mode == gesture.Pointer {
		m.sink.MoveCursor(x, y)
		res.Moved, res.X, res.Y = true, x, y
	}

	out := m.classifier.Classify(gesture.Input{
		Hand:  hand,
		Frame: gesture.Dimensions{Width: obs.Width, Height: obs.Height},
		Mode:  m.mode,
		State: m.state,
		Now:   now,
	})
	m.mode, m.state = out.Mode, out.State
	res.Events, res.Mode = out.Events, out.Mode

	for _, e := range out.Events {
		m.dispatch(e)
	}
	return res
}

func (m *Machine) dispatch(e gesture.Event) {
	switch e.Kind {
	case gesture.LeftClick:
		m.sink.Click()
	case gesture.DoubleClick:
		m.sink.DoubleClick()
	case gesture.RightClick:
		m.sink.RightClick()
	case gesture.ScrollDelta:
		if e.DY != 0 {
			m.sink.Scroll(e.DY)
		}
		if e.DX != 0 {
			m.sink.HScroll(e.DX)
		}
	}
}

// target maps the index fingertip from the unit square onto the screen,
// clamping landmarks that fall outside the frame.
func (m *Machine) target(hand *detector.HandLandmarks) gesture.Point {
	tip := hand.Points[detector.IndexTip]
	return gesture.Point{
		X: clamp01(tip.X) * float64(m.screen.Width),
		Y: clamp01(tip.Y) * float64(m.screen.Height),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Apply executes an override. SetMode bypasses the toggle cooldown and
// leaves the toggle timer alone. Quit is a no-op here; stopping is up to
// whoever runs the loop.
func (m *Machine) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdSetMode:
		if !cmd.Mode.Valid() {
			return fmt.Errorf("set mode: invalid %s", cmd.Mode)
		}
		m.mode = cmd.Mode
	case CmdPause:
		m.paused = true
	case CmdResume:
		m.paused = false
	case CmdSetThresholds:
		if err := cmd.Thresholds.Validate(); err != nil {
			return fmt.Errorf("set thresholds: %w", err)
		}
		if cmd.Thresholds.HistoryLength != m.smoother.Cap() {
			m.smoother = gesture.NewSmoother(cmd.Thresholds.HistoryLength)
		}
		m.classifier = gesture.NewClassifier(cmd.Thresholds)
	case CmdQuit:
	default:
		return fmt.Errorf("unknown %s", cmd.Kind)
	}
	return nil
}

// Mode returns the current mode.
func (m *Machine) Mode() gesture.Mode { return m.mode }

// State returns a copy of the debounce state.
func (m *Machine) State() gesture.DebounceState { return m.state }

// Paused reports whether ticks are being ignored.
func (m *Machine) Paused() bool { return m.paused }

// Thresholds returns the active calibration.
func (m *Machine) Thresholds() gesture.Thresholds { return m.classifier.Thresholds() }

// Screen returns the screen size the cursor is mapped onto.
func (m *Machine) Screen() gesture.Dimensions { return m.screen }

// HistoryLen returns how many cursor samples are currently averaged.
func (m *Machine) HistoryLen() int { return m.smoother.Len() }
