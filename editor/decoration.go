package editor

import (
	"sort"
	"strings"
)

// Replacement is a view-only decoration: the host renders Text in place
// of the half-open rune span [StartCol, EndCol) of line Row. The
// underlying document text is untouched.
type Replacement struct {
	Row      int
	StartCol int
	EndCol   int
	Text     string
	StyleKey string
}

// Decorations runs the list bullet and image widget passes over the
// visible rows and returns the merged, normalized replacement set.
func (e *Engine) Decorations() []Replacement {
	reps := e.bulletDecorations()
	reps = append(reps, e.imageDecorations()...)
	return normalizeReplacements(reps, e.buf.LineLen)
}

// normalizeReplacements clamps spans into line bounds, drops empties
// and multi-line text, sorts by (row, start), and resolves overlaps by
// keeping the first span.
func normalizeReplacements(reps []Replacement, lineLen func(row int) int) []Replacement {
	if len(reps) == 0 {
		return nil
	}

	out := make([]Replacement, 0, len(reps))
	for _, rep := range reps {
		max := 0
		if lineLen != nil {
			max = maxInt(lineLen(rep.Row), 0)
		}
		start := clampInt(rep.StartCol, 0, max)
		end := clampInt(rep.EndCol, 0, max)
		if end < start {
			start, end = end, start
		}
		text := sanitizeSingleLine(rep.Text)
		if start == end || text == "" {
			continue
		}
		rep.StartCol, rep.EndCol, rep.Text = start, end, text
		out = append(out, rep)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		if out[i].StartCol != out[j].StartCol {
			return out[i].StartCol < out[j].StartCol
		}
		return out[i].EndCol < out[j].EndCol
	})

	merged := make([]Replacement, 0, len(out))
	for _, rep := range out {
		if len(merged) > 0 {
			last := merged[len(merged)-1]
			if rep.Row == last.Row && rep.StartCol < last.EndCol {
				continue
			}
		}
		merged = append(merged, rep)
	}
	return merged
}

func sanitizeSingleLine(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}
