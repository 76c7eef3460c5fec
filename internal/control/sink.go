// Package control is the interaction state machine: it owns the mode, the
// cursor history and the debounce timers, and turns classified gestures
// into actions on a Sink.
package control

import (
	"fmt"
	"sync"
)

// Sink is the OS-facing effector. Calls are fire-and-forget; a sink that
// fails to deliver an action reports it on its own (usually by logging).
type Sink interface {
	MoveCursor(x, y int)
	Click()
	DoubleClick()
	RightClick()
	// Scroll scrolls vertically; positive amounts scroll up.
	Scroll(amount int)
	// HScroll scrolls horizontally; positive amounts scroll right.
	HScroll(amount int)
}

// Op names a sink call.
type Op string

const (
	OpMove        Op = "move"
	OpClick       Op = "click"
	OpDoubleClick Op = "double_click"
	OpRightClick  Op = "right_click"
	OpScroll      Op = "scroll"
	OpHScroll     Op = "hscroll"
)

// Call is one recorded sink call. X and Y are set for OpMove, Amount for
// the two scroll ops.
type Call struct {
	Op     Op
	X, Y   int
	Amount int
}

func (c Call) String() string {
	switch c.Op {
	case OpMove:
		return fmt.Sprintf("move(%d,%d)", c.X, c.Y)
	case OpScroll, OpHScroll:
		return fmt.Sprintf("%s(%d)", c.Op, c.Amount)
	default:
		return string(c.Op)
	}
}

// Recorder is a Sink that keeps every call. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *Recorder) MoveCursor(x, y int) { r.record(Call{Op: OpMove, X: x, Y: y}) }
func (r *Recorder) Click()              { r.record(Call{Op: OpClick}) }
func (r *Recorder) DoubleClick()        { r.record(Call{Op: OpDoubleClick}) }
func (r *Recorder) RightClick()         { r.record(Call{Op: OpRightClick}) }
func (r *Recorder) Scroll(amount int)   { r.record(Call{Op: OpScroll, Amount: amount}) }
func (r *Recorder) HScroll(amount int)  { r.record(Call{Op: OpHScroll, Amount: amount}) }

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns just the op of each recorded call.
func (r *Recorder) Ops() []Op {
	calls := r.Calls()
	out := make([]Op, len(calls))
	for i, c := range calls {
		out[i] = c.Op
	}
	return out
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
