package editor

import (
	"strings"

	"github.com/iw2rmb/moondown/document"
)

// Marks supported by the inline style engine.
const (
	MarkBold      = "**"
	MarkItalic    = "*"
	MarkStrike    = "~~"
	MarkUnderline = "~"
	MarkCode      = "`"
	MarkHighlight = "=="
)

// markerRunes are the characters that may form a combined marker run.
const markerRunes = "*~=`"

// Toggle flips the given inline mark around the current selection (or
// caret). Exactly one of four outcomes applies, in priority order: the
// bold/bold-italic star special case, stripping one layer of the same
// mark, editing a combined marker set, or wrapping the selection with
// fresh markers. Malformed spans never fail; the chain falls through to
// the wrap. The selection is re-anchored over the same text afterwards.
func Toggle(buf *document.Buffer, mark string) {
	if mark == "" {
		return
	}

	sel, hasSel := buf.Selection()
	if !hasSel {
		cur := buf.Cursor()
		sel = document.Range{Start: cur, End: cur}
	}

	// Inline emphasis does not span lines; multi-line selections get a
	// plain wrap.
	if sel.Start.Row != sel.End.Row {
		buf.Patch(
			insertAt(sel.End.Row, sel.End.Col, mark),
			insertAt(sel.Start.Row, sel.Start.Col, mark),
		)
		return
	}

	line := lineRunes(buf, sel.Start.Row)
	row := sel.Start.Row
	s := clampInt(sel.Start.Col, 0, len(line))
	e := clampInt(sel.End.Col, s, len(line))
	markR := []rune(mark)
	ctxLen := 3 * len(markR)

	reanchor := func(s2, e2 int) {
		if hasSel {
			buf.SetSelection(document.Range{
				Start: document.Pos{Row: row, Col: s2},
				End:   document.Pos{Row: row, Col: e2},
			})
		} else {
			buf.SetCursor(document.Pos{Row: row, Col: s2})
		}
	}

	// 1. Star ambiguity: a **bold** span toggled with * becomes
	// ***bold-italic***, and back.
	if mark == MarkItalic {
		sb := starRun(line, s, -1, ctxLen)
		sa := starRun(line, e, +1, ctxLen)
		if sb >= 2 && sa >= 2 {
			if sb >= 3 && sa >= 3 {
				buf.Patch(
					deleteSpan(row, e, e+1),
					deleteSpan(row, s-1, s),
				)
				reanchor(s-1, e-1)
				return
			}
			buf.Patch(
				insertAt(row, e, MarkItalic),
				insertAt(row, s, MarkItalic),
			)
			reanchor(s+1, e+1)
			return
		}
	}

	// 2. Same mark directly enclosing: strip exactly one layer.
	nb := markRun(line, s, markR, -1, ctxLen)
	na := markRun(line, e, markR, +1, ctxLen)
	if nb >= 1 && na >= 1 {
		buf.Patch(
			deleteSpan(row, e, e+len(markR)),
			deleteSpan(row, s-len(markR), s),
		)
		reanchor(s-len(markR), e-len(markR))
		return
	}

	// 3. A combined marker run encloses the selection: add or remove
	// this mark within the set.
	before, beforeStart := markerRunBefore(line, s, ctxLen)
	after, _ := markerRunAfter(line, e, ctxLen)
	if before != "" && after != "" {
		bSet, bOK := splitMarkerRun(before)
		aSet, aOK := splitMarkerRun(after)
		if bOK && aOK {
			bi := indexOfMark(bSet, mark)
			ai := indexOfMark(aSet, mark)
			if bi >= 0 && ai >= 0 {
				bCol := beforeStart + runPrefixLen(bSet, bi)
				aCol := e + runPrefixLen(aSet, ai)
				buf.Patch(
					deleteSpan(row, aCol, aCol+len(markR)),
					deleteSpan(row, bCol, bCol+len(markR)),
				)
				reanchor(s-len(markR), e-len(markR))
				return
			}
			buf.Patch(
				insertAt(row, e, mark),
				insertAt(row, s, mark),
			)
			reanchor(s+len(markR), e+len(markR))
			return
		}
	}

	// 4. Nothing matched: wrap.
	buf.Patch(
		insertAt(row, e, mark),
		insertAt(row, s, mark),
	)
	reanchor(s+len(markR), e+len(markR))
}

// IsActive reports whether the mark is in effect around the current
// selection. Read-only twin of Toggle's enclosing-span search.
func IsActive(buf *document.Buffer, mark string) bool {
	if mark == "" {
		return false
	}

	sel, ok := buf.Selection()
	if !ok {
		cur := buf.Cursor()
		sel = document.Range{Start: cur, End: cur}
	}
	if sel.Start.Row != sel.End.Row {
		return false
	}

	line := lineRunes(buf, sel.Start.Row)
	s := clampInt(sel.Start.Col, 0, len(line))
	e := clampInt(sel.End.Col, s, len(line))
	markR := []rune(mark)
	ctxLen := 3 * len(markR)

	// Star marks resolve through star counts first: *** means both bold
	// and italic are active. A failed count still falls through to the
	// combined-run check, where ** may sit outside other markers.
	switch mark {
	case MarkItalic, MarkBold:
		sb := starRun(line, s, -1, 3)
		sa := starRun(line, e, +1, 3)
		if sb >= 3 && sa >= 3 {
			return true
		}
		if mark == MarkBold && sb >= 2 && sa >= 2 {
			return true
		}
		if mark == MarkItalic && sb == 1 && sa == 1 {
			return true
		}
	default:
		if markRun(line, s, markR, -1, ctxLen) >= 1 && markRun(line, e, markR, +1, ctxLen) >= 1 {
			return true
		}
	}

	before, _ := markerRunBefore(line, s, ctxLen)
	after, _ := markerRunAfter(line, e, ctxLen)
	if before == "" || after == "" {
		return false
	}
	bSet, bOK := splitMarkerRun(before)
	aSet, aOK := splitMarkerRun(after)
	return bOK && aOK && indexOfMark(bSet, mark) >= 0 && indexOfMark(aSet, mark) >= 0
}

func insertAt(row, col int, text string) document.TextEdit {
	p := document.Pos{Row: row, Col: col}
	return document.TextEdit{Range: document.Range{Start: p, End: p}, Text: text}
}

func deleteSpan(row, startCol, endCol int) document.TextEdit {
	return document.TextEdit{Range: document.Range{
		Start: document.Pos{Row: row, Col: startCol},
		End:   document.Pos{Row: row, Col: endCol},
	}}
}

// starRun counts consecutive '*' runes walking outward from col, capped
// by limit. dir -1 scans left of col, +1 scans right from col.
func starRun(line []rune, col, dir, limit int) int {
	n := 0
	for n < limit {
		var i int
		if dir < 0 {
			i = col - n - 1
		} else {
			i = col + n
		}
		if i < 0 || i >= len(line) || line[i] != '*' {
			break
		}
		n++
	}
	return n
}

// markRun counts whole repetitions of mark adjacent to col, capped by
// the context window.
func markRun(line []rune, col int, mark []rune, dir, window int) int {
	limit := window / len(mark)
	return minInt(runLength(line, col, mark, dir), limit)
}

// markerRunBefore returns the run of marker characters immediately left
// of col (within the window) and the column where it begins.
func markerRunBefore(line []rune, col, window int) (string, int) {
	lo := col
	for lo > 0 && col-lo < window && strings.ContainsRune(markerRunes, line[lo-1]) {
		lo--
	}
	if lo == col {
		return "", col
	}
	return string(line[lo:col]), lo
}

// markerRunAfter returns the run of marker characters starting at col
// (within the window) and the column just past it.
func markerRunAfter(line []rune, col, window int) (string, int) {
	hi := col
	for hi < len(line) && hi-col < window && strings.ContainsRune(markerRunes, line[hi]) {
		hi++
	}
	if hi == col {
		return "", col
	}
	return string(line[col:hi]), hi
}

// splitMarkerRun decomposes a marker run into known marks, preferring
// double-character marks. ok is false when a stray character (for
// example a lone '=') makes the run unreadable.
func splitMarkerRun(run string) ([]string, bool) {
	var out []string
	for run != "" {
		switch {
		case strings.HasPrefix(run, MarkBold):
			out = append(out, MarkBold)
			run = run[2:]
		case strings.HasPrefix(run, MarkStrike):
			out = append(out, MarkStrike)
			run = run[2:]
		case strings.HasPrefix(run, MarkHighlight):
			out = append(out, MarkHighlight)
			run = run[2:]
		case strings.HasPrefix(run, MarkItalic):
			out = append(out, MarkItalic)
			run = run[1:]
		case strings.HasPrefix(run, MarkUnderline):
			out = append(out, MarkUnderline)
			run = run[1:]
		case strings.HasPrefix(run, MarkCode):
			out = append(out, MarkCode)
			run = run[1:]
		default:
			return nil, false
		}
	}
	return out, true
}

func indexOfMark(set []string, mark string) int {
	for i, m := range set {
		if m == mark {
			return i
		}
	}
	return -1
}

// runPrefixLen is the rune length of the first i marks in the set.
func runPrefixLen(set []string, i int) int {
	n := 0
	for j := 0; j < i && j < len(set); j++ {
		n += len([]rune(set[j]))
	}
	return n
}
