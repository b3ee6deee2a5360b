package grapheme

import "testing"

func TestSplitAndCount_MultiRuneGraphemes(t *testing.T) {
	text := "a" + "é" + "b"
	got := Split(text)
	if len(got) != 3 {
		t.Fatalf("split len=%d, want %d", len(got), 3)
	}
	if got[1] != "é" {
		t.Fatalf("split[1]=%q, want %q", got[1], "é")
	}
	if c := Count(text); c != 3 {
		t.Fatalf("count=%d, want %d", c, 3)
	}
}

func TestSlice_GraphemeSafe(t *testing.T) {
	text := "a" + "é" + "b"
	if got, want := Slice(text, 1, 2), "é"; got != want {
		t.Fatalf("slice=%q, want %q", got, want)
	}
	if got := Slice(text, 5, 6); got != "" {
		t.Fatalf("slice past end=%q, want empty", got)
	}
}

func TestWidth(t *testing.T) {
	if got := Width(""); got != 0 {
		t.Fatalf("empty width=%d, want 0", got)
	}
	if got := Width("abc"); got != 3 {
		t.Fatalf("ascii width=%d, want 3", got)
	}
	if got := Width("列表"); got != 4 {
		t.Fatalf("wide width=%d, want 4", got)
	}
}
