package tray

import (
	"testing"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestTray_PauseToggleFollowsReportedState(t *testing.T) {
	var got []control.Command
	tr := New(func(cmd control.Command) { got = append(got, cmd) })

	tr.handlePause()
	tr.SetPaused(true)
	tr.handlePause()

	if len(got) != 2 {
		t.Fatalf("got %d commands, want 2", len(got))
	}
	if got[0].Kind != control.CmdPause || got[1].Kind != control.CmdResume {
		t.Errorf("commands = %v, want pause then resume", got)
	}
	for _, cmd := range got {
		if cmd.Origin != Origin {
			t.Errorf("origin = %q, want %q", cmd.Origin, Origin)
		}
	}
}

func TestTray_StateWithoutMenu(t *testing.T) {
	tr := New(nil)

	tr.SetMode(gesture.Scroll)
	tr.SetLastAction("left_click")
	tr.send(control.Quit(Origin))

	if tr.Mode() != gesture.Scroll {
		t.Errorf("Mode() = %s, want scroll", tr.Mode())
	}
	if tr.IsPaused() {
		t.Error("IsPaused() = true, want false")
	}
}

func TestTray_Settings(t *testing.T) {
	tr := New(nil)
	tr.handleSettings()
	if tr.hasSettings() {
		t.Error("hasSettings() = true before OnSettings")
	}

	opened := 0
	tr.OnSettings(func() { opened++ })
	tr.handleSettings()

	if !tr.hasSettings() {
		t.Error("hasSettings() = false after OnSettings")
	}
	if opened != 1 {
		t.Errorf("opened = %d, want 1", opened)
	}
}

func TestTitles(t *testing.T) {
	if got := modeTitle(gesture.Pointer); got != "Mode: pointer" {
		t.Errorf("modeTitle() = %q", got)
	}
	if pauseTitle(true) == pauseTitle(false) {
		t.Error("pause titles should differ")
	}
}
