package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/moondown/document"
)

// ListKeyMap defines the list editing key bindings.
type ListKeyMap struct {
	Indent    key.Binding
	Outdent   key.Binding
	Continue  key.Binding
	Backspace key.Binding
	Delete    key.Binding
}

func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Indent:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent list item")),
		Outdent:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "outdent list item")),
		Continue:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue list")),
		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete left")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete right")),
	}
}

func (km ListKeyMap) isZero() bool {
	return len(km.Indent.Keys()) == 0 && len(km.Outdent.Keys()) == 0 &&
		len(km.Continue.Keys()) == 0 && len(km.Backspace.Keys()) == 0 &&
		len(km.Delete.Keys()) == 0
}

// handleListKey runs the list keymap state machine. It only acts when
// the cursor line is a list item; Backspace/Delete additionally look at
// the adjacent line, schedule a renumber, and still report unhandled so
// the host performs the default character deletion.
func (e *Engine) handleListKey(msg tea.KeyMsg) bool {
	cursor := e.buf.Cursor()
	info, onItem := GetListInfo(e.buf, cursor)
	km := e.cfg.ListKeys

	switch {
	case key.Matches(msg, km.Indent):
		if !onItem {
			return false
		}
		e.indentLine(cursor.Row, listIndentStep)
		e.scheduleRenumber()
		return true

	case key.Matches(msg, km.Outdent):
		if !onItem {
			return false
		}
		if info.Indent > 0 {
			e.outdentLine(cursor.Row, minInt(listIndentStep, info.Indent))
			e.scheduleRenumber()
		}
		return true

	case key.Matches(msg, km.Continue):
		if !onItem {
			return false
		}
		e.continueList(cursor, info)
		return true

	case key.Matches(msg, km.Backspace):
		if onItem || e.isListRow(cursor.Row-1) {
			e.scheduleRenumber()
		}
		return false

	case key.Matches(msg, km.Delete):
		if onItem || e.isListRow(cursor.Row+1) {
			e.scheduleRenumber()
		}
		return false
	}
	return false
}

func (e *Engine) isListRow(row int) bool {
	line, ok := e.buf.Line(row)
	if !ok {
		return false
	}
	_, _, _, _, matched := matchListLine(line)
	return matched
}

func (e *Engine) indentLine(row, step int) {
	cursor := e.buf.Cursor()
	e.buf.Patch(document.TextEdit{
		Range: document.Range{Start: document.Pos{Row: row}, End: document.Pos{Row: row}},
		Text:  strings.Repeat(" ", step),
	})
	if cursor.Row == row {
		e.buf.SetCursor(document.Pos{Row: row, Col: cursor.Col + step})
	}
}

func (e *Engine) outdentLine(row, step int) {
	line, ok := e.buf.Line(row)
	if !ok {
		return
	}
	remove := minInt(step, indentWidth(line))
	if remove <= 0 {
		return
	}
	cursor := e.buf.Cursor()
	e.buf.Patch(document.TextEdit{
		Range: document.Range{Start: document.Pos{Row: row}, End: document.Pos{Row: row, Col: remove}},
	})
	if cursor.Row == row {
		e.buf.SetCursor(document.Pos{Row: row, Col: maxInt(cursor.Col-remove, 0)})
	}
}

// continueList implements Enter on a list line: empty items exit or
// outdent, non-empty items start a sibling at the same indent.
func (e *Engine) continueList(cursor document.Pos, info ListItemInfo) {
	if strings.TrimSpace(info.Content) == "" {
		if info.Indent == 0 {
			// Delete the marker and exit the list.
			e.buf.Apply(document.TextEdit{
				Range: document.Range{
					Start: document.Pos{Row: cursor.Row},
					End:   info.MarkerEnd,
				},
			})
			return
		}
		// Outdent one step and continue at the shallower level.
		indent := info.Indent - listIndentStep
		e.buf.Apply(document.TextEdit{
			Range: document.Range{
				Start: document.Pos{Row: cursor.Row},
				End:   info.MarkerEnd,
			},
			Text: strings.Repeat(" ", indent) + GenerateListItem(info.Kind, indent, 1),
		})
		e.scheduleRenumber()
		return
	}

	marker := GenerateListItem(info.Kind, info.Indent, nextOrderedNumber(info))
	e.buf.Apply(document.TextEdit{
		Range: document.Range{Start: cursor, End: cursor},
		Text:  "\n" + strings.Repeat(" ", info.Indent) + marker,
	})
	e.scheduleRenumber()
}

// nextOrderedNumber guesses the follow-up number from the current
// marker's deepest segment; the deferred renumber pass canonicalizes.
func nextOrderedNumber(info ListItemInfo) int {
	if info.Kind != ListOrdered {
		return 1
	}
	segs := strings.Split(info.Marker, ".")
	last := segs[len(segs)-1]
	n := 0
	for _, r := range last {
		n = n*10 + int(r-'0')
	}
	return n + 1
}

// scheduleRenumber defers a renumber pass until after the triggering
// transaction has committed. Rescheduling cancels the pending pass.
func (e *Engine) scheduleRenumber() {
	if e.renumberCancel != nil {
		e.renumberCancel()
	}
	e.renumberCancel = e.cfg.Scheduler.After(e.cfg.RenumberDelay, func() {
		e.renumberCancel = nil
		Renumber(e.buf)
	})
}

// maybeScheduleRenumber applies the change-scan heuristic: a renumber
// is warranted when any line within the configured margin of an edited
// range matches the list pattern.
func (e *Engine) maybeScheduleRenumber(change document.Change) {
	margin := e.cfg.RenumberScanMargin
	for _, edit := range change.AppliedEdits {
		lo := edit.RangeAfter.Start.Row - margin
		hi := edit.RangeAfter.End.Row + margin
		for row := lo; row <= hi; row++ {
			if e.isListRow(row) {
				e.scheduleRenumber()
				return
			}
		}
	}
}
