package document

import "strings"

// InsertText inserts text at the cursor, or replaces the active
// selection.
func (b *Buffer) InsertText(s string) {
	if s == "" {
		if _, ok := b.Selection(); ok {
			b.DeleteSelection()
		}
		return
	}

	r, ok := b.Selection()
	if !ok {
		r = Range{Start: b.cursor, End: b.cursor}
	}

	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)

	nextCursor, applied, changed := b.replaceRange(r, s)
	if !changed {
		return
	}
	b.finishEdit(prev, &change, nextCursor, applied)
}

// InsertNewline inserts a line break at the cursor, or replaces the
// active selection.
func (b *Buffer) InsertNewline() {
	b.InsertText("\n")
}

// DeleteBackward applies backspace semantics.
func (b *Buffer) DeleteBackward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}

	row, col := b.cursor.Row, b.cursor.Col
	if row == 0 && col == 0 {
		return
	}

	var r Range
	if col > 0 {
		r = Range{Start: Pos{Row: row, Col: col - 1}, End: Pos{Row: row, Col: col}}
	} else {
		// Join with the previous line (delete the newline).
		r = Range{Start: Pos{Row: row - 1, Col: b.lineLen(row - 1)}, End: Pos{Row: row, Col: 0}}
	}
	b.deleteRange(r)
}

// DeleteForward applies delete-key semantics.
func (b *Buffer) DeleteForward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}

	row, col := b.cursor.Row, b.cursor.Col
	lastRow := len(b.lines) - 1
	if row == lastRow && col == b.lineLen(lastRow) {
		return
	}

	var r Range
	if col < b.lineLen(row) {
		r = Range{Start: Pos{Row: row, Col: col}, End: Pos{Row: row, Col: col + 1}}
	} else {
		// Join with the next line (delete the newline).
		r = Range{Start: Pos{Row: row, Col: col}, End: Pos{Row: row + 1, Col: 0}}
	}
	b.deleteRange(r)
}

// DeleteSelection deletes the active selection, if any.
func (b *Buffer) DeleteSelection() {
	r, ok := b.Selection()
	if !ok {
		return
	}
	b.deleteRange(r)
}

// Apply applies a sequence of text edits as one transaction. Each
// edit's range is interpreted against the buffer state at the time that
// edit is applied. The cursor moves to the end of the last effective
// edit and the selection is cleared.
func (b *Buffer) Apply(edits ...TextEdit) {
	if len(edits) == 0 {
		return
	}

	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)

	anyChanged := false
	lastCursor := b.cursor
	for _, e := range edits {
		nextCursor, applied, changed := b.replaceRange(e.Range, e.Text)
		if !changed {
			continue
		}
		anyChanged = true
		lastCursor = nextCursor
		change.addAppliedEdit(applied)
	}
	if !anyChanged {
		return
	}

	b.cursor = b.clampPos(lastCursor)
	b.sel = selectionState{}
	b.version++
	b.recordUndo(prev)
	b.commitChange(change)
}

// Patch applies edits as one transaction while leaving the cursor and
// selection where they were (clamped into the new bounds). Used by
// maintenance passes such as list renumbering, which must not steal the
// caret.
func (b *Buffer) Patch(edits ...TextEdit) {
	if len(edits) == 0 {
		return
	}

	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)

	cursor := b.cursor
	sel := b.sel

	anyChanged := false
	for _, e := range edits {
		_, applied, changed := b.replaceRange(e.Range, e.Text)
		if !changed {
			continue
		}
		anyChanged = true
		change.addAppliedEdit(applied)
	}
	if !anyChanged {
		return
	}

	b.cursor = b.clampPos(cursor)
	if sel.active {
		b.sel = selectionState{
			active: true,
			anchor: b.clampPos(sel.anchor),
			end:    b.clampPos(sel.end),
		}
	}
	b.version++
	b.recordUndo(prev)
	b.commitChange(change)
}

func (b *Buffer) deleteRange(r Range) {
	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)

	nextCursor, applied, changed := b.replaceRange(r, "")
	if !changed {
		return
	}
	b.finishEdit(prev, &change, nextCursor, applied)
}

func (b *Buffer) finishEdit(prev bufferSnapshot, change *changeBuilder, nextCursor Pos, applied AppliedEdit) {
	b.cursor = nextCursor
	b.sel = selectionState{}
	b.version++
	b.recordUndo(prev)
	change.addAppliedEdit(applied)
	b.commitChange(*change)
}

func (b *Buffer) replaceRange(r Range, text string) (nextCursor Pos, applied AppliedEdit, changed bool) {
	r = NormalizeRange(ClampRange(r, len(b.lines), b.lineLen))
	if r.IsEmpty() && text == "" {
		return b.cursor, AppliedEdit{}, false
	}

	deletedText := b.TextInRange(r)
	if deletedText == text {
		return b.cursor, AppliedEdit{}, false
	}

	startRow, startCol := r.Start.Row, r.Start.Col
	endRow, endCol := r.End.Row, r.End.Col

	prefix := append([]rune(nil), b.lines[startRow][:startCol]...)
	suffix := append([]rune(nil), b.lines[endRow][endCol:]...)

	parts := strings.Split(text, "\n")
	repl := make([][]rune, 0, len(parts))
	if len(parts) == 1 {
		line := make([]rune, 0, len(prefix)+len(parts[0])+len(suffix))
		line = append(line, prefix...)
		line = append(line, []rune(parts[0])...)
		line = append(line, suffix...)
		repl = append(repl, line)
		nextCursor = Pos{Row: startRow, Col: len(prefix) + len([]rune(parts[0]))}
	} else {
		first := append(prefix, []rune(parts[0])...)
		repl = append(repl, first)
		for i := 1; i < len(parts)-1; i++ {
			repl = append(repl, []rune(parts[i]))
		}
		lastPart := []rune(parts[len(parts)-1])
		last := make([]rune, 0, len(lastPart)+len(suffix))
		last = append(last, lastPart...)
		last = append(last, suffix...)
		repl = append(repl, last)
		nextCursor = Pos{Row: startRow + len(parts) - 1, Col: len(lastPart)}
	}

	out := make([][]rune, 0, startRow+len(repl)+len(b.lines)-endRow-1)
	out = append(out, b.lines[:startRow]...)
	out = append(out, repl...)
	out = append(out, b.lines[endRow+1:]...)
	if len(out) == 0 {
		out = [][]rune{nil}
	}
	b.lines = out

	applied = AppliedEdit{
		RangeBefore: r,
		RangeAfter:  Range{Start: r.Start, End: nextCursor},
		InsertText:  text,
		DeletedText: deletedText,
	}
	return nextCursor, applied, true
}
