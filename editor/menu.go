package editor

import (
	"strings"

	"github.com/iw2rmb/moondown/document"
)

// MenuItem is a tagged record, not a class hierarchy: a button when
// Action is set, a dropdown when SubItems is set.
type MenuItem struct {
	Name     string
	Glyph    string
	Action   func(e *Engine)
	IsActive func(e *Engine) bool
	SubItems []MenuItem
}

// selectionMenuState is the Hidden -> Shown machine for the floating
// format menu. anchor tracks the selection the menu is bound to.
type selectionMenuState struct {
	visible bool
	anchor  document.Range
	x, y    int
	openSub int // index of the expanded dropdown, -1 when none
}

// menuOffsetY is the fixed placement offset above the selection box.
const menuOffsetY = 1

// DefaultMenuItems is the built-in selection menu table. Item actions
// delegate to the list and inline engines; none of them mutate text at
// the menu layer.
func DefaultMenuItems() []MenuItem {
	heading := func(level int) MenuItem {
		glyph := "H" + string(rune('0'+level))
		return MenuItem{
			Name:     "Heading " + string(rune('0'+level)),
			Glyph:    glyph,
			Action:   func(e *Engine) { e.toggleHeading(level) },
			IsActive: func(e *Engine) bool { return e.headingLevel() == level },
		}
	}
	mark := func(name, glyph, m string) MenuItem {
		return MenuItem{
			Name:     name,
			Glyph:    glyph,
			Action:   func(e *Engine) { Toggle(e.buf, m) },
			IsActive: func(e *Engine) bool { return IsActive(e.buf, m) },
		}
	}
	listItem := func(name, glyph string, kind ListKind) MenuItem {
		return MenuItem{
			Name:   name,
			Glyph:  glyph,
			Action: func(e *Engine) { e.toggleListKind(kind) },
			IsActive: func(e *Engine) bool {
				info, ok := GetListInfo(e.buf, e.buf.Cursor())
				return ok && info.Kind == kind
			},
		}
	}

	return []MenuItem{
		{
			Name:     "Heading",
			Glyph:    "H",
			SubItems: []MenuItem{heading(1), heading(2), heading(3)},
		},
		{
			Name:  "List",
			Glyph: "≡",
			SubItems: []MenuItem{
				listItem("Numbered list", "1.", ListOrdered),
				listItem("Bulleted list", "•", ListUnordered),
			},
		},
		mark("Bold", "B", MarkBold),
		mark("Italic", "I", MarkItalic),
		{
			Name:  "Decoration",
			Glyph: "✎",
			SubItems: []MenuItem{
				mark("Highlight", "▣", MarkHighlight),
				mark("Strikethrough", "S", MarkStrike),
				mark("Underline", "U", MarkUnderline),
				mark("Inline code", "<>", MarkCode),
			},
		},
	}
}

// showSelectionMenu transitions Hidden -> Shown on pointer-up when a
// non-empty, non-image selection exists. Image selections get no format
// menu.
func (e *Engine) showSelectionMenu() {
	sel, ok := e.buf.Selection()
	if !ok {
		e.hideSelectionMenu()
		return
	}
	if isImageToken(e.buf.TextInRange(sel)) {
		e.hideSelectionMenu()
		return
	}

	x, y := 0, 0
	if e.cfg.Mapper != nil {
		sx, sy, sok := e.cfg.Mapper.DocToScreen(sel.Start)
		ex, _, eok := e.cfg.Mapper.DocToScreen(sel.End)
		if !sok && !eok {
			e.hideSelectionMenu()
			return
		}
		if sok {
			x, y = sx, sy
		}
		if sok && eok {
			// Virtual box spanning start to end on the same line;
			// anchor the menu at its left edge.
			x = minInt(sx, ex)
		}
		y -= menuOffsetY
		if y < 0 {
			y = 0
		}
	}

	e.menu = selectionMenuState{visible: true, anchor: sel, x: x, y: y, openSub: -1}
}

func (e *Engine) hideSelectionMenu() {
	e.menu = selectionMenuState{openSub: -1}
}

// syncSelectionMenu destroys the menu whenever the selection collapses
// or changes extent.
func (e *Engine) syncSelectionMenu() {
	if !e.menu.visible {
		return
	}
	sel, ok := e.buf.Selection()
	if !ok || sel != e.menu.anchor {
		e.hideSelectionMenu()
	}
}

// runMenuItem executes an item action, collapses the selection to a
// caret at its former end, and hides the menu.
func (e *Engine) runMenuItem(item MenuItem) {
	if item.Action == nil {
		return
	}
	sel, hadSel := e.buf.Selection()
	item.Action(e)

	if hadSel {
		end := sel.End
		if cur, ok := e.buf.Selection(); ok {
			end = cur.End
		}
		e.buf.ClearSelection()
		e.buf.SetCursor(end)
	}
	e.hideSelectionMenu()
}

// headingLevel returns the length of the leading '#' run on the cursor
// line, 0 when the line is not a heading.
func (e *Engine) headingLevel() int {
	line, ok := e.buf.Line(e.buf.Cursor().Row)
	if !ok {
		return 0
	}
	n := 0
	for _, r := range line {
		if r != '#' {
			break
		}
		n++
	}
	if n == 0 || n > 6 {
		return 0
	}
	rest := []rune(line)[n:]
	if len(rest) > 0 && rest[0] != ' ' {
		return 0
	}
	return n
}

// toggleHeading toggles the leading '#' run on the cursor line: same
// level removes it, any other state replaces it.
func (e *Engine) toggleHeading(level int) {
	row := e.buf.Cursor().Row
	line, ok := e.buf.Line(row)
	if !ok || level < 1 {
		return
	}

	current := e.headingLevel()
	prefixLen := 0
	if current > 0 {
		prefixLen = current
		if len([]rune(line)) > current {
			prefixLen++ // the space after the run
		}
	}

	text := ""
	if current != level {
		text = strings.Repeat("#", level) + " "
	}
	e.buf.Patch(document.TextEdit{
		Range: document.Range{
			Start: document.Pos{Row: row},
			End:   document.Pos{Row: row, Col: prefixLen},
		},
		Text: text,
	})
}

// toggleListKind strips an existing marker of the same kind, converts a
// marker of the other kind, or adds a fresh marker, then schedules a
// renumber.
func (e *Engine) toggleListKind(kind ListKind) {
	cursor := e.buf.Cursor()
	info, ok := GetListInfo(e.buf, cursor)
	switch {
	case ok && info.Kind == kind:
		e.buf.Patch(document.TextEdit{
			Range: document.Range{
				Start: document.Pos{Row: cursor.Row},
				End:   info.MarkerEnd,
			},
			Text: strings.Repeat(" ", info.Indent),
		})
	case ok:
		e.buf.Patch(document.TextEdit{
			Range: document.Range{
				Start: document.Pos{Row: cursor.Row, Col: info.Indent},
				End:   info.MarkerEnd,
			},
			Text: GenerateListItem(kind, info.Indent, 1),
		})
	default:
		e.buf.Patch(document.TextEdit{
			Range: document.Range{
				Start: document.Pos{Row: cursor.Row},
				End:   document.Pos{Row: cursor.Row},
			},
			Text: GenerateListItem(kind, 0, 1),
		})
	}
	e.scheduleRenumber()
}
