package gesture

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Input is everything the classifier looks at for one tick.
type Input struct {
	Hand  *detector.HandLandmarks
	Frame Dimensions
	Mode  Mode
	State DebounceState
	Now   time.Time
}

// Result is the outcome of classifying one tick. Mode and State are the
// values the caller should carry into the next tick; Classify itself never
// mutates anything.
type Result struct {
	Events []Event
	Mode   Mode
	State  DebounceState
}

// Has reports whether an event of kind k was produced.
func (r Result) Has(k EventKind) bool {
	for _, e := range r.Events {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Classifier turns a landmark snapshot into discrete gesture events.
type Classifier struct {
	th Thresholds
}

// NewClassifier returns a classifier using th.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// Thresholds returns the active calibration.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// Classify evaluates one tick. Rules, in order:
//
//  1. index-thumb pinch: DoubleClick when the previous click was less than
//     DoubleClickInterval ago, else LeftClick; either restarts the click timer.
//  2. otherwise middle-thumb pinch: RightClick, with no cooldown.
//  3. fist, when more than ModeSwitchCooldown has passed since the last
//     toggle: ModeToggle. The toggled mode applies to rule 4 of the same tick.
//  4. in scroll mode: a ScrollDelta for each axis on which the index tip has
//     moved more than ScrollThreshold since the previous scroll-mode sample.
//     The reference is resampled on every scroll-mode tick.
//
// Rules 1/2, 3 and 4 are independent, so one tick may yield a click, a
// toggle and a scroll together.
func (c *Classifier) Classify(in Input) Result {
	res := Result{Mode: in.Mode, State: in.State}
	hand := in.Hand
	if hand == nil {
		return res
	}

	thumb := hand.Points[detector.ThumbTip]

	switch {
	case PixelDistance(hand.Points[detector.IndexTip], thumb, in.Frame) < c.th.ClickThreshold:
		if in.Now.Sub(in.State.LastClick) < c.th.DoubleClickInterval {
			res.Events = append(res.Events, Event{Kind: DoubleClick})
		} else {
			res.Events = append(res.Events, Event{Kind: LeftClick})
		}
		res.State.LastClick = in.Now
	case PixelDistance(hand.Points[detector.MiddleTip], thumb, in.Frame) < c.th.ClickThreshold:
		res.Events = append(res.Events, Event{Kind: RightClick})
	}

	if IsFist(hand, in.Frame, c.th.ClickThreshold) && in.Now.Sub(in.State.LastModeSwitch) > c.th.ModeSwitchCooldown {
		res.Events = append(res.Events, Event{Kind: ModeToggle})
		res.Mode = res.Mode.Toggle()
		res.State.LastModeSwitch = in.Now
	}

	if res.Mode == Scroll {
		x, y := in.Frame.ToPixels(hand.Points[detector.IndexTip])
		scroll := Event{Kind: ScrollDelta}
		if math.Abs(y-res.State.ScrollY) > c.th.ScrollThreshold {
			scroll.DY = c.steps(res.State.ScrollY - y)
		}
		if math.Abs(x-res.State.ScrollX) > c.th.ScrollThreshold {
			scroll.DX = c.steps(res.State.ScrollX - x)
		}
		if scroll.DX != 0 || scroll.DY != 0 {
			res.Events = append(res.Events, scroll)
		}
		res.State.ScrollX, res.State.ScrollY = x, y
	}

	return res
}

func (c *Classifier) steps(travel float64) int {
	return int(math.Round(travel / c.th.ScrollDivisor))
}
