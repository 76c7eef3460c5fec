package gesture

import "fmt"

// EventKind identifies a classified gesture.
type EventKind int

const (
	None EventKind = iota
	LeftClick
	DoubleClick
	RightClick
	ModeToggle
	ScrollDelta
)

var eventNames = map[EventKind]string{
	None:        "none",
	LeftClick:   "left_click",
	DoubleClick: "double_click",
	RightClick:  "right_click",
	ModeToggle:  "mode_toggle",
	ScrollDelta: "scroll",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one classified gesture. DX and DY are set only for ScrollDelta,
// in wheel steps; a zero component means that axis did not cross the
// scroll threshold. Positive DY scrolls up, positive DX scrolls right.
type Event struct {
	Kind EventKind `json:"kind"`
	DX   int       `json:"dx,omitempty"`
	DY   int       `json:"dy,omitempty"`
}

// IsClick reports whether e is one of the click-class events.
func (e Event) IsClick() bool {
	return e.Kind == LeftClick || e.Kind == DoubleClick || e.Kind == RightClick
}

func (e Event) String() string {
	if e.Kind == ScrollDelta {
		return fmt.Sprintf("scroll(dx=%d, dy=%d)", e.DX, e.DY)
	}
	return e.Kind.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
