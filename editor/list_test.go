package editor

import (
	"testing"

	"github.com/iw2rmb/moondown/document"
)

func TestRenumberDocument_CanonicalizesNestedNumbering(t *testing.T) {
	buf := document.New(
		"1. alpha\n1. beta\n  1. gamma\n  5. delta\n2. epsilon",
		document.Options{},
	)

	Renumber(buf)

	want := "1. alpha\n2. beta\n  2.1. gamma\n  2.2. delta\n3. epsilon"
	if got := buf.Text(); got != want {
		t.Fatalf("renumbered text:\ngot  %q\nwant %q", got, want)
	}
}

func TestRenumberDocument_IdempotentOnCanonicalInput(t *testing.T) {
	buf := document.New("1. a\n2. b\n  2.1. c\n3. d", document.Options{})

	if edits := RenumberDocument(buf); len(edits) != 0 {
		t.Fatalf("canonical document produced %d edits, want 0", len(edits))
	}

	v := buf.Version()
	Renumber(buf)
	if buf.Version() != v {
		t.Fatalf("renumber of canonical document bumped the version")
	}
}

func TestRenumberDocument_BlankLinesKeepTheList(t *testing.T) {
	buf := document.New("1. a\n\n1. b", document.Options{})
	Renumber(buf)
	if got, want := buf.Text(), "1. a\n\n2. b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenumberDocument_ParagraphResetsTheList(t *testing.T) {
	buf := document.New("1. a\nplain text\n1. b", document.Options{})
	Renumber(buf)
	if got, want := buf.Text(), "1. a\nplain text\n1. b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenumberDocument_AfterDeletingFirstItem(t *testing.T) {
	buf := document.New("1. a\n2. b", document.Options{})
	buf.Apply(document.TextEdit{Range: document.Range{
		Start: document.Pos{Row: 0},
		End:   document.Pos{Row: 1},
	}})

	Renumber(buf)
	if got, want := buf.Text(), "1. b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenumberDocument_PreservesCursorAndSelection(t *testing.T) {
	buf := document.New("1. a\n7. b", document.Options{})
	buf.SetCursor(document.Pos{Row: 1, Col: 4})
	buf.SetSelection(document.Range{
		Start: document.Pos{Row: 1, Col: 3},
		End:   document.Pos{Row: 1, Col: 4},
	})

	Renumber(buf)

	if got, want := buf.Text(), "1. a\n2. b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := buf.Cursor(), (document.Pos{Row: 1, Col: 4}); got != want {
		t.Fatalf("cursor: got %+v, want %+v", got, want)
	}
	if sel, ok := buf.Selection(); !ok || sel.Start.Col != 3 {
		t.Fatalf("selection lost or moved: %+v ok=%v", sel, ok)
	}
}

func TestRenumberDocument_MixedKindsAtSameIndent(t *testing.T) {
	buf := document.New("1. a\n- b\n1. c", document.Options{})
	Renumber(buf)
	// The unordered item restarts the level, so numbering resumes at 1.
	if got, want := buf.Text(), "1. a\n- b\n1. c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMatchListLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantKind   ListKind
		wantIndent int
		wantMarker string
		wantEnd    int
		wantOK     bool
	}{
		{name: "ordered", line: "1. item", wantKind: ListOrdered, wantMarker: "1", wantEnd: 3, wantOK: true},
		{name: "nested ordered", line: "  2.3. item", wantKind: ListOrdered, wantIndent: 2, wantMarker: "2.3", wantEnd: 7, wantOK: true},
		{name: "dash", line: "- item", wantKind: ListUnordered, wantMarker: "-", wantEnd: 2, wantOK: true},
		{name: "star", line: "  * item", wantKind: ListUnordered, wantIndent: 2, wantMarker: "*", wantEnd: 4, wantOK: true},
		{name: "plus", line: "+ item", wantKind: ListUnordered, wantMarker: "+", wantEnd: 2, wantOK: true},
		{name: "no space after dot", line: "1.item", wantOK: false},
		{name: "plain", line: "item", wantOK: false},
		{name: "empty", line: "", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, indent, marker, end, ok := matchListLine(tc.line)
			if ok != tc.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if kind != tc.wantKind || indent != tc.wantIndent || marker != tc.wantMarker || end != tc.wantEnd {
				t.Fatalf("got kind=%v indent=%d marker=%q end=%d, want kind=%v indent=%d marker=%q end=%d",
					kind, indent, marker, end, tc.wantKind, tc.wantIndent, tc.wantMarker, tc.wantEnd)
			}
		})
	}
}

func TestGetListInfo(t *testing.T) {
	buf := document.New("  1. hello", document.Options{})

	info, ok := GetListInfo(buf, document.Pos{Row: 0, Col: 6})
	if !ok {
		t.Fatalf("expected a list item")
	}
	if info.Kind != ListOrdered || info.Indent != 2 || info.Marker != "1" || info.Content != "hello" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.MarkerEnd != (document.Pos{Row: 0, Col: 5}) {
		t.Fatalf("marker end: got %+v", info.MarkerEnd)
	}

	if _, ok := GetListInfo(buf, document.Pos{Row: 5}); ok {
		t.Fatalf("out of range row should not be a list item")
	}
}

func TestGenerateListItem(t *testing.T) {
	if got, want := GenerateListItem(ListOrdered, 0, 3), "3. "; got != want {
		t.Fatalf("ordered: got %q, want %q", got, want)
	}
	if got, want := GenerateListItem(ListOrdered, 4, 0), "1. "; got != want {
		t.Fatalf("ordered clamp: got %q, want %q", got, want)
	}
	// Unordered markers cycle with depth.
	if got, want := GenerateListItem(ListUnordered, 0, 1), "- "; got != want {
		t.Fatalf("depth 0: got %q, want %q", got, want)
	}
	if got, want := GenerateListItem(ListUnordered, 2, 1), "* "; got != want {
		t.Fatalf("depth 1: got %q, want %q", got, want)
	}
	if got, want := GenerateListItem(ListUnordered, 4, 1), "+ "; got != want {
		t.Fatalf("depth 2: got %q, want %q", got, want)
	}
	if got, want := GenerateListItem(ListUnordered, 6, 1), "- "; got != want {
		t.Fatalf("depth 3 wraps: got %q, want %q", got, want)
	}
}

func TestBulletDecorations_GlyphByDepth(t *testing.T) {
	e, _, _ := newTestEngine("- zero\n  - one\n    - two\nplain\n1. ordered")

	reps := e.Decorations()
	if len(reps) != 3 {
		t.Fatalf("got %d replacements, want 3", len(reps))
	}
	wantGlyphs := []string{"● ", "○ ", "■ "}
	for i, rep := range reps {
		if rep.Text != wantGlyphs[i] {
			t.Fatalf("row %d glyph: got %q, want %q", rep.Row, rep.Text, wantGlyphs[i])
		}
		if rep.StyleKey != "bullet" {
			t.Fatalf("row %d style key: got %q", rep.Row, rep.StyleKey)
		}
	}
}
