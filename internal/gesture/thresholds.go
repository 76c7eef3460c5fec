package gesture

import (
	"errors"
	"fmt"
	"time"
)

// Thresholds are the tunable constants of gesture evaluation. Pixel values
// are measured in camera frame pixels and were tuned at 640x480.
type Thresholds struct {
	// ClickThreshold is the fingertip distance below which two tips touch.
	// It also bounds fingertip-to-palm distance for the fist shape.
	ClickThreshold float64
	// ScrollThreshold is the per-axis fingertip travel that produces a scroll step.
	ScrollThreshold float64
	// HistoryLength is the number of cursor samples averaged.
	HistoryLength int
	// ClickCooldown is carried in configuration but does not gate clicks.
	ClickCooldown time.Duration
	// DoubleClickInterval is the window in which a second pinch becomes a double click.
	DoubleClickInterval time.Duration
	// ModeSwitchCooldown is the minimum time between two fist toggles.
	ModeSwitchCooldown time.Duration
	// ScrollDivisor converts fingertip travel in pixels into wheel steps.
	ScrollDivisor float64
}

// DefaultThresholds returns the stock calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ClickThreshold:      30,
		ScrollThreshold:     20,
		HistoryLength:       5,
		ClickCooldown:       300 * time.Millisecond,
		DoubleClickInterval: 500 * time.Millisecond,
		ModeSwitchCooldown:  time.Second,
		ScrollDivisor:       10,
	}
}

// Validate rejects values the classifier cannot work with.
func (t Thresholds) Validate() error {
	switch {
	case t.ClickThreshold <= 0:
		return errors.New("click_threshold must be positive")
	case t.ScrollThreshold <= 0:
		return errors.New("scroll_threshold must be positive")
	case t.HistoryLength <= 0:
		return fmt.Errorf("history_length must be positive, got %d", t.HistoryLength)
	case t.ClickCooldown < 0:
		return errors.New("click_cooldown must not be negative")
	case t.DoubleClickInterval < 0:
		return errors.New("double_click_interval must not be negative")
	case t.ModeSwitchCooldown < 0:
		return errors.New("mode_switch_cooldown must not be negative")
	case t.ScrollDivisor <= 0:
		return errors.New("scroll_divisor must be positive")
	}
	return nil
}
