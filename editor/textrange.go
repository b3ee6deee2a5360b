package editor

import (
	"strings"

	"github.com/iw2rmb/moondown/document"
)

// lineRunes returns the rune slice for the row under pos, or nil when
// the row is out of range. Callers treat nil as "not applicable".
func lineRunes(buf *document.Buffer, row int) []rune {
	line, ok := buf.Line(row)
	if !ok {
		return nil
	}
	return []rune(line)
}

// isBlank reports whether the line contains only whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// indentWidth counts leading whitespace runes.
func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

// runLength counts how many times mark repeats, walking outward from
// the given column. dir is -1 to scan left of col (exclusive) or +1 to
// scan right from col (inclusive).
func runLength(line []rune, col int, mark []rune, dir int) int {
	if len(mark) == 0 {
		return 0
	}
	count := 0
	for {
		var lo int
		if dir < 0 {
			lo = col - (count+1)*len(mark)
			if lo < 0 {
				return count
			}
		} else {
			lo = col + count*len(mark)
			if lo+len(mark) > len(line) {
				return count
			}
		}
		if string(line[lo:lo+len(mark)]) != string(mark) {
			return count
		}
		count++
	}
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
