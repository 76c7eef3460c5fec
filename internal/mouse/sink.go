// Package mouse drives the OS pointer.
package mouse

import (
	"fmt"
	"log/slog"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/mudra/internal/control"
)

// Sink kinds accepted by NewSink.
const (
	KindRobot = "robotgo"
	KindLog   = "log"
)

// RobotSink synthesizes real input events with robotgo.
//
// Scroll amounts are passed through as robotgo units. On X11 and Windows
// that is one wheel notch per step; on macOS robotgo posts pixel-unit
// scroll events, so a step moves a few pixels rather than a line.
type RobotSink struct {
	logger *slog.Logger
	scroll func(x, y int)
}

// NewRobotSink returns a sink that moves the real cursor.
func NewRobotSink(logger *slog.Logger) *RobotSink {
	return &RobotSink{
		logger: logger,
		scroll: func(x, y int) { robotgo.Scroll(x, y) },
	}
}

func (s *RobotSink) MoveCursor(x, y int) {
	robotgo.Move(x, y)
}

func (s *RobotSink) Click() {
	robotgo.Click("left")
	s.logger.Debug("click")
}

func (s *RobotSink) DoubleClick() {
	robotgo.Click("left", true)
	s.logger.Debug("double click")
}

func (s *RobotSink) RightClick() {
	robotgo.Click("right")
	s.logger.Debug("right click")
}

func (s *RobotSink) Scroll(amount int) {
	s.scroll(0, amount)
	s.logger.Debug("scroll", "amount", amount)
}

func (s *RobotSink) HScroll(amount int) {
	// robotgo scrolls left for positive x.
	s.scroll(-amount, 0)
	s.logger.Debug("hscroll", "amount", amount)
}

// LogSink only logs what it would have done. It is the sink for dry runs
// and for headless machines where synthetic input is unavailable.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing one record per action to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) MoveCursor(x, y int) {
	s.logger.Debug("move cursor", "x", x, "y", y)
}

func (s *LogSink) Click()       { s.logger.Info("click") }
func (s *LogSink) DoubleClick() { s.logger.Info("double click") }
func (s *LogSink) RightClick()  { s.logger.Info("right click") }

func (s *LogSink) Scroll(amount int) {
	s.logger.Info("scroll", "amount", amount)
}

func (s *LogSink) HScroll(amount int) {
	s.logger.Info("hscroll", "amount", amount)
}

// NewSink builds the sink named by kind.
func NewSink(kind string, logger *slog.Logger) (control.Sink, error) {
	switch kind {
	case KindRobot, "":
		return NewRobotSink(logger), nil
	case KindLog:
		return NewLogSink(logger), nil
	default:
		return nil, fmt.Errorf("unknown sink kind %q", kind)
	}
}
