package gesture

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the interaction mode. Exactly one is active at a time.
type Mode int

const (
	// Pointer moves the cursor with the index fingertip.
	Pointer Mode = iota
	// Scroll turns fingertip motion into scroll wheel steps.
	Scroll
)

// String returns the lowercase mode name used in config, APIs and logs.
func (m Mode) String() string {
	switch m {
	case Pointer:
		return "pointer"
	case Scroll:
		return "scroll"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	switch m {
	case Pointer:
		return Scroll
	case Scroll:
		return Pointer
	default:
		panic(fmt.Sprintf("gesture: toggle of invalid %s", m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m == Pointer || m == Scroll
}

// ParseMode parses a mode name. "move" is accepted as an alias for pointer.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointer", "move":
		return Pointer, nil
	case "scroll":
		return Scroll, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid %s", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DebounceState carries the timers and scroll reference between ticks.
// The zero value is the start-of-process state: no click or mode switch
// has happened and the scroll reference is the frame origin.
type DebounceState struct {
	LastClick      time.Time
	LastModeSwitch time.Time
	// ScrollX and ScrollY are the index fingertip position, in frame pixels,
	// at the last tick evaluated in scroll mode.
	ScrollX float64
	ScrollY float64
}
