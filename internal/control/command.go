package control

import (
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// CommandKind identifies an external override.
type CommandKind int

const (
	// CmdSetMode forces the mode, bypassing the toggle cooldown.
	CmdSetMode CommandKind = iota
	// CmdQuit stops the control loop.
	CmdQuit
	// CmdPause makes every tick a no-hand tick until resumed.
	CmdPause
	// CmdResume undoes CmdPause.
	CmdResume
	// CmdSetThresholds replaces the calibration.
	CmdSetThresholds
)

func (k CommandKind) String() string {
	switch k {
	case CmdSetMode:
		return "set_mode"
	case CmdQuit:
		return "quit"
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdSetThresholds:
		return "set_thresholds"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is an override delivered from outside the tick loop, e.g. from
// a hotkey, the tray menu or the HTTP API. Commands take effect at the
// next tick boundary.
type Command struct {
	Kind       CommandKind
	Mode       gesture.Mode
	Thresholds gesture.Thresholds
	// Origin records where the command came from: "keyboard", "tray", "http".
	Origin string
}

// SetMode returns a mode override.
func SetMode(m gesture.Mode, origin string) Command {
	return Command{Kind: CmdSetMode, Mode: m, Origin: origin}
}

// Quit returns a stop request.
func Quit(origin string) Command {
	return Command{Kind: CmdQuit, Origin: origin}
}

// Pause returns a pause request.
func Pause(origin string) Command {
	return Command{Kind: CmdPause, Origin: origin}
}

// Resume returns a resume request.
func Resume(origin string) Command {
	return Command{Kind: CmdResume, Origin: origin}
}

// SetThresholds returns a calibration change.
func SetThresholds(th gesture.Thresholds, origin string) Command {
	return Command{Kind: CmdSetThresholds, Thresholds: th, Origin: origin}
}

func (c Command) String() string {
	if c.Kind == CmdSetMode {
		return fmt.Sprintf("%s(%s) from %s", c.Kind, c.Mode, c.Origin)
	}
	return fmt.Sprintf("%s from %s", c.Kind, c.Origin)
}
