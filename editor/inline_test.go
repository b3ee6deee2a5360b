package editor

import (
	"testing"

	"github.com/iw2rmb/moondown/document"
)

func selectSpan(buf *document.Buffer, row, start, end int) {
	buf.SetCursor(document.Pos{Row: row, Col: end})
	buf.SetSelection(document.Range{
		Start: document.Pos{Row: row, Col: start},
		End:   document.Pos{Row: row, Col: end},
	})
}

func TestToggle_WrapAndStripRoundTrip(t *testing.T) {
	marks := []string{MarkBold, MarkItalic, MarkStrike, MarkUnderline, MarkCode, MarkHighlight}

	for _, mark := range marks {
		t.Run(mark, func(t *testing.T) {
			buf := document.New("word", document.Options{})
			selectSpan(buf, 0, 0, 4)

			Toggle(buf, mark)
			want := mark + "word" + mark
			if got := buf.Text(); got != want {
				t.Fatalf("wrap: got %q, want %q", got, want)
			}
			if !IsActive(buf, mark) {
				t.Fatalf("mark %q should be active after wrap", mark)
			}

			Toggle(buf, mark)
			if got := buf.Text(); got != "word" {
				t.Fatalf("strip: got %q, want %q", got, "word")
			}
			if IsActive(buf, mark) {
				t.Fatalf("mark %q should be inactive after strip", mark)
			}
		})
	}
}

func TestToggle_SelectionSurvivesRoundTrip(t *testing.T) {
	buf := document.New("say word now", document.Options{})
	selectSpan(buf, 0, 4, 8)

	Toggle(buf, MarkBold)
	sel, ok := buf.Selection()
	if !ok {
		t.Fatalf("selection lost after wrap")
	}
	if got := buf.TextInRange(sel); got != "word" {
		t.Fatalf("selection after wrap covers %q, want %q", got, "word")
	}

	Toggle(buf, MarkBold)
	sel, ok = buf.Selection()
	if !ok {
		t.Fatalf("selection lost after strip")
	}
	if got := buf.TextInRange(sel); got != "word" {
		t.Fatalf("selection after strip covers %q, want %q", got, "word")
	}
	if got, want := buf.Text(), "say word now"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToggle_BoldItalicStarPromotion(t *testing.T) {
	buf := document.New("**word**", document.Options{})
	selectSpan(buf, 0, 2, 6)

	Toggle(buf, MarkItalic)
	if got, want := buf.Text(), "***word***"; got != want {
		t.Fatalf("promote: got %q, want %q", got, want)
	}
	if !IsActive(buf, MarkBold) || !IsActive(buf, MarkItalic) {
		t.Fatalf("both star marks should be active on a triple run")
	}

	Toggle(buf, MarkItalic)
	if got, want := buf.Text(), "**word**"; got != want {
		t.Fatalf("demote: got %q, want %q", got, want)
	}
	if !IsActive(buf, MarkBold) || IsActive(buf, MarkItalic) {
		t.Fatalf("demote should leave bold only")
	}
}

func TestToggle_RemoveInnerMarkOfCombinedRun(t *testing.T) {
	buf := document.New("**~~word~~**", document.Options{})
	selectSpan(buf, 0, 4, 8)

	Toggle(buf, MarkStrike)
	if got, want := buf.Text(), "**word**"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToggle_RemoveOuterMarkOfCombinedRun(t *testing.T) {
	buf := document.New("~~**word**~~", document.Options{})
	selectSpan(buf, 0, 4, 8)

	Toggle(buf, MarkStrike)
	if got, want := buf.Text(), "**word**"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if sel, _ := buf.Selection(); buf.TextInRange(sel) != "word" {
		t.Fatalf("selection should still cover the word")
	}
}

func TestToggle_AddMarkInsideCombinedRun(t *testing.T) {
	buf := document.New("**~~word~~**", document.Options{})
	selectSpan(buf, 0, 4, 8)

	Toggle(buf, MarkHighlight)
	if got, want := buf.Text(), "**~~==word==~~**"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !IsActive(buf, MarkHighlight) {
		t.Fatalf("highlight should be active after adding it to the run")
	}
}

func TestToggle_StrayCharacterFallsBackToWrap(t *testing.T) {
	// A lone '=' is not a readable marker run, so the chain falls
	// through to a plain wrap.
	buf := document.New("=word=", document.Options{})
	selectSpan(buf, 0, 1, 5)

	Toggle(buf, MarkBold)
	if got, want := buf.Text(), "=**word**="; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToggle_CaretOnlyWrapsAtCursor(t *testing.T) {
	buf := document.New("ab", document.Options{})
	buf.SetCursor(document.Pos{Row: 0, Col: 1})

	Toggle(buf, MarkBold)
	if got, want := buf.Text(), "a**"+"**b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	// The caret sits between the marker pair, ready for typing.
	if got, want := buf.Cursor(), (document.Pos{Row: 0, Col: 3}); got != want {
		t.Fatalf("cursor: got %+v, want %+v", got, want)
	}
}

func TestToggle_MultiLineSelectionWraps(t *testing.T) {
	buf := document.New("one\ntwo", document.Options{})
	buf.SetCursor(document.Pos{Row: 1, Col: 3})
	buf.SetSelection(document.Range{
		Start: document.Pos{Row: 0, Col: 0},
		End:   document.Pos{Row: 1, Col: 3},
	})

	Toggle(buf, MarkBold)
	if got, want := buf.Text(), "**one\ntwo**"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		end   int
		mark  string
		want  bool
	}{
		{name: "bold on bold", text: "**word**", start: 2, end: 6, mark: MarkBold, want: true},
		{name: "italic on bold", text: "**word**", start: 2, end: 6, mark: MarkItalic, want: false},
		{name: "italic on italic", text: "*word*", start: 1, end: 5, mark: MarkItalic, want: true},
		{name: "bold on italic", text: "*word*", start: 1, end: 5, mark: MarkBold, want: false},
		{name: "both on triple", text: "***word***", start: 3, end: 7, mark: MarkBold, want: true},
		{name: "code", text: "`word`", start: 1, end: 5, mark: MarkCode, want: true},
		{name: "strike in combined run", text: "**~~word~~**", start: 4, end: 8, mark: MarkStrike, want: true},
		{name: "bold in combined run", text: "**~~word~~**", start: 4, end: 8, mark: MarkBold, want: true},
		{name: "absent mark in combined run", text: "**~~word~~**", start: 4, end: 8, mark: MarkHighlight, want: false},
		{name: "plain text", text: "word", start: 0, end: 4, mark: MarkBold, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := document.New(tc.text, document.Options{})
			selectSpan(buf, 0, tc.start, tc.end)
			if got := IsActive(buf, tc.mark); got != tc.want {
				t.Fatalf("IsActive(%q, %q): got %v, want %v", tc.text, tc.mark, got, tc.want)
			}
		})
	}
}
