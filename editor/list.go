package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iw2rmb/moondown/document"
)

// ListKind distinguishes ordered from unordered list items.
type ListKind uint8

const (
	ListUnordered ListKind = iota
	ListOrdered
)

// ListLevel is one nesting depth of a list: indent width in columns,
// the running item number at that depth, and the item kind.
type ListLevel struct {
	Indent int
	Number int
	Kind   ListKind
}

// ListItemInfo describes the list item on a single line. Derived on
// demand, never stored.
type ListItemInfo struct {
	Kind    ListKind
	Indent  int
	Marker  string // raw marker text without the trailing space
	Content string
	// MarkerEnd is the position just past the marker and its following
	// space, where the item content begins.
	MarkerEnd document.Pos
}

var (
	orderedItemRE   = regexp.MustCompile(`^(\s*)(\d+(?:\.\d+)*)\.\s`)
	unorderedItemRE = regexp.MustCompile(`^(\s*)([-*+])\s`)
)

// unordered raw markers cycle with indent depth; purely textual.
var unorderedMarkers = []string{"-", "*", "+"}

// bulletGlyphs is the rendered palette for unordered markers, chosen by
// nesting depth.
var bulletGlyphs = []string{"●", "○", "■", "□", "▲", "△"}

const listIndentStep = 2

// matchListLine parses a line as a list item. marker excludes the
// trailing space; for ordered items it also excludes the final dot.
func matchListLine(line string) (kind ListKind, indent int, marker string, markerEnd int, ok bool) {
	if m := orderedItemRE.FindStringSubmatch(line); m != nil {
		indent = len([]rune(m[1]))
		marker = m[2]
		markerEnd = indent + len([]rune(m[2])) + 2 // dot and space
		return ListOrdered, indent, marker, markerEnd, true
	}
	if m := unorderedItemRE.FindStringSubmatch(line); m != nil {
		indent = len([]rune(m[1]))
		marker = m[2]
		markerEnd = indent + 2 // marker rune and space
		return ListUnordered, indent, marker, markerEnd, true
	}
	return 0, 0, "", 0, false
}

// RenumberDocument walks every line once and computes the minimal
// marker replacements that bring ordered numbering into canonical
// multi-level form. Unordered markers are never rewritten here; their
// glyphs are a decoration concern. The result is empty for an already
// canonical document.
func RenumberDocument(buf *document.Buffer) []document.TextEdit {
	var edits []document.TextEdit
	stack := make([]ListLevel, 0, 8)

	for row := 0; row < buf.LineCount(); row++ {
		line, _ := buf.Line(row)
		if isBlank(line) {
			// Blank lines keep the stack: lists may contain visual
			// spacing.
			continue
		}

		kind, indent, marker, _, ok := matchListLine(line)
		if !ok {
			stack = stack[:0]
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].Indent > indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && stack[len(stack)-1].Indent == indent {
			top := &stack[len(stack)-1]
			if top.Kind == kind {
				top.Number++
			} else {
				*top = ListLevel{Indent: indent, Number: 1, Kind: kind}
			}
		} else {
			stack = append(stack, ListLevel{Indent: indent, Number: 1, Kind: kind})
		}

		if kind != ListOrdered {
			continue
		}

		want := renderOrderedMarker(stack)
		if want == marker {
			continue
		}
		edits = append(edits, document.TextEdit{
			Range: document.Range{
				Start: document.Pos{Row: row, Col: indent},
				End:   document.Pos{Row: row, Col: indent + len([]rune(marker))},
			},
			Text: want,
		})
	}
	return edits
}

// Renumber applies RenumberDocument's edits as one cursor-preserving
// transaction. No-op when the numbering is already canonical.
func Renumber(buf *document.Buffer) {
	if edits := RenumberDocument(buf); len(edits) > 0 {
		buf.Patch(edits...)
	}
}

// renderOrderedMarker joins the running numbers of the ordered levels
// currently on the stack, e.g. levels [2 1] render as "2.1".
func renderOrderedMarker(stack []ListLevel) string {
	parts := make([]string, 0, len(stack))
	for _, lv := range stack {
		if lv.Kind == ListOrdered {
			parts = append(parts, strconv.Itoa(lv.Number))
		}
	}
	return strings.Join(parts, ".")
}

// GetListInfo returns the list item on the line under pos, or false
// when the line is not a list item or pos is out of range.
func GetListInfo(buf *document.Buffer, pos document.Pos) (ListItemInfo, bool) {
	line, ok := buf.Line(pos.Row)
	if !ok {
		return ListItemInfo{}, false
	}
	kind, indent, marker, markerEnd, ok := matchListLine(line)
	if !ok {
		return ListItemInfo{}, false
	}
	runes := []rune(line)
	return ListItemInfo{
		Kind:      kind,
		Indent:    indent,
		Marker:    marker,
		Content:   string(runes[minInt(markerEnd, len(runes)):]),
		MarkerEnd: document.Pos{Row: pos.Row, Col: markerEnd},
	}, true
}

// GenerateListItem builds the literal marker text for a new item at the
// given indent, including the trailing space. Ordered markers render a
// plain number (the renumber pass canonicalizes nesting); unordered
// markers cycle through three glyphs by depth.
func GenerateListItem(kind ListKind, indent, number int) string {
	if kind == ListOrdered {
		if number < 1 {
			number = 1
		}
		return fmt.Sprintf("%d. ", number)
	}
	return unorderedMarkers[(maxInt(indent, 0)/listIndentStep)%len(unorderedMarkers)] + " "
}

// bulletDecorations renders every visible unordered marker as a glyph
// from the six-symbol palette, leaving the raw text untouched.
func (e *Engine) bulletDecorations() []Replacement {
	start, end := e.visibleRows()
	var reps []Replacement
	for row := start; row < end; row++ {
		line, ok := e.buf.Line(row)
		if !ok {
			continue
		}
		kind, indent, _, markerEnd, matched := matchListLine(line)
		if !matched || kind != ListUnordered {
			continue
		}
		glyph := bulletGlyphs[(indent/listIndentStep)%len(bulletGlyphs)]
		reps = append(reps, Replacement{
			Row:      row,
			StartCol: indent,
			EndCol:   markerEnd,
			Text:     glyph + " ",
			StyleKey: "bullet",
		})
	}
	return reps
}
