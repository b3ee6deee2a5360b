package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/moondown/document"
)

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestListKeys_TabIndentsAndRenumbers(t *testing.T) {
	e, buf, sched := newTestEngine("1. a\n1. b")
	buf.SetCursor(document.Pos{Row: 1, Col: 3})

	if !e.Update(keyMsg(tea.KeyTab)) {
		t.Fatalf("tab on a list line should be consumed")
	}
	if got, want := buf.Text(), "1. a\n  1. b"; got != want {
		t.Fatalf("after indent: got %q, want %q", got, want)
	}
	if got, want := buf.Cursor(), (document.Pos{Row: 1, Col: 5}); got != want {
		t.Fatalf("cursor after indent: got %+v, want %+v", got, want)
	}

	sched.FireAll()
	if got, want := buf.Text(), "1. a\n  1.1. b"; got != want {
		t.Fatalf("after renumber: got %q, want %q", got, want)
	}
}

func TestListKeys_ShiftTabOutdents(t *testing.T) {
	e, buf, sched := newTestEngine("1. a\n  1.1. b")
	buf.SetCursor(document.Pos{Row: 1, Col: 7})

	if !e.Update(keyMsg(tea.KeyShiftTab)) {
		t.Fatalf("shift+tab on a nested list line should be consumed")
	}
	sched.FireAll()

	if got, want := buf.Text(), "1. a\n2. b"; got != want {
		t.Fatalf("after outdent: got %q, want %q", got, want)
	}
}

func TestListKeys_TabOffListFallsThrough(t *testing.T) {
	e, buf, _ := newTestEngine("plain line")
	buf.SetCursor(document.Pos{Row: 0, Col: 5})

	if e.Update(keyMsg(tea.KeyTab)) {
		t.Fatalf("tab off a list line should not be consumed")
	}
	if got, want := buf.Text(), "plain line"; got != want {
		t.Fatalf("text changed: got %q", got)
	}
}

func TestListKeys_EnterContinuesWithNextNumber(t *testing.T) {
	e, buf, _ := newTestEngine("1. alpha")
	buf.SetCursor(document.Pos{Row: 0, Col: 8})

	if !e.Update(keyMsg(tea.KeyEnter)) {
		t.Fatalf("enter on a list line should be consumed")
	}
	if got, want := buf.Text(), "1. alpha\n2. "; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := buf.Cursor(), (document.Pos{Row: 1, Col: 3}); got != want {
		t.Fatalf("cursor: got %+v, want %+v", got, want)
	}
}

func TestListKeys_EnterContinuesUnordered(t *testing.T) {
	e, buf, _ := newTestEngine("- alpha")
	buf.SetCursor(document.Pos{Row: 0, Col: 7})

	e.Update(keyMsg(tea.KeyEnter))
	if got, want := buf.Text(), "- alpha\n- "; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListKeys_EnterOnEmptyTopLevelItemExits(t *testing.T) {
	e, buf, _ := newTestEngine("1. alpha\n2. ")
	buf.SetCursor(document.Pos{Row: 1, Col: 3})

	e.Update(keyMsg(tea.KeyEnter))
	if got, want := buf.Text(), "1. alpha\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListKeys_EnterOnEmptyNestedItemOutdents(t *testing.T) {
	e, buf, sched := newTestEngine("1. alpha\n  1. ")
	buf.SetCursor(document.Pos{Row: 1, Col: 5})

	e.Update(keyMsg(tea.KeyEnter))
	sched.FireAll()
	if got, want := buf.Text(), "1. alpha\n2. "; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListKeys_BackspaceSchedulesRenumberButFallsThrough(t *testing.T) {
	e, buf, sched := newTestEngine("1. a\n2. b")
	buf.SetCursor(document.Pos{Row: 1, Col: 0})

	if e.Update(keyMsg(tea.KeyBackspace)) {
		t.Fatalf("backspace must fall through to the host")
	}
	if sched.pending() == 0 {
		t.Fatalf("backspace near a list should schedule a renumber")
	}

	// Host performs the default deletion (joins the lines), then the
	// deferred pass runs.
	buf.DeleteBackward()
	sched.FireAll()
	if got, want := buf.Text(), "1. a2. b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestListKeys_RescheduleCancelsPendingPass(t *testing.T) {
	e, buf, sched := newTestEngine("1. a\n1. b")
	buf.SetCursor(document.Pos{Row: 1, Col: 3})

	e.Update(keyMsg(tea.KeyTab))
	e.Update(keyMsg(tea.KeyShiftTab))

	fired := 0
	for i := range sched.fns {
		if !sched.cancelled[i] {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("got %d live renumber timers, want 1", fired)
	}

	sched.FireAll()
	if got, want := buf.Text(), "1. a\n2. b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMaybeScheduleRenumber_ScanMargin(t *testing.T) {
	e, buf, sched := newTestEngine("plain\n1. a\nplain tail")
	buf.SetCursor(document.Pos{Row: 0, Col: 5})

	// An edit one row above the list item falls inside the default
	// margin.
	typeText(e, buf, "x")
	if sched.pending() == 0 {
		t.Fatalf("edit adjacent to a list item should schedule a renumber")
	}
}

func TestMaybeScheduleRenumber_FarEditDoesNotSchedule(t *testing.T) {
	e, buf, sched := newTestEngine("plain\nplain\nplain\n1. a")
	buf.SetCursor(document.Pos{Row: 0, Col: 5})

	typeText(e, buf, "x")
	if sched.pending() != 0 {
		t.Fatalf("edit far from any list item scheduled a renumber")
	}
}
