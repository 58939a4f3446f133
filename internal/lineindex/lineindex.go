// Package lineindex maps byte offsets in a buffer to line/column positions and back.
//
// A Table is built once per buffer text and is immutable afterwards. Every line, including the final one, is stored with one extra terminator slot: the final line
// (the text after the last '\n', possibly empty) has no newline, but is still counted as if it had one. As a result, the lengths of a Table sum to len(text)+1, and
// a text with k newlines has k+1 lines.
//
// Offsets and columns are byte based. Out-of-range offsets and lines are programming errors and cause a panic.
package lineindex

import "fmt"

// Table is the line-length table of one buffer.
type Table struct {
	lengths []int // bytes on each line, plus 1 for the (possibly virtual) terminator
	starts  []int // offset of the first byte of each line
	size    int   // len(text)
}

// Position is a 0-indexed line and a byte column on that line.
type Position struct {
	Line int
	Col  int
}

// Build returns the Table for text.
func Build(text string) *Table {
	t := &Table{size: len(text)}
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			t.starts = append(t.starts, start)
			t.lengths = append(t.lengths, i-start+1)
			start = i + 1
		}
	}
	t.starts = append(t.starts, start)
	t.lengths = append(t.lengths, len(text)-start+1)
	return t
}

// Len returns the length of the indexed text.
func (t *Table) Len() int {
	return t.size
}

// LineCount returns the number of lines. It is always at least 1.
func (t *Table) LineCount() int {
	return len(t.lengths)
}

// Lengths returns a copy of the line-length table.
func (t *Table) Lengths() []int {
	out := make([]int, len(t.lengths))
	copy(out, t.lengths)
	return out
}

// CharsOnLine returns the number of bytes on line, excluding its newline.
func (t *Table) CharsOnLine(line int) int {
	t.checkLine(line)
	return t.lengths[line] - 1
}

// LineStart returns the offset of the first byte of line.
func (t *Table) LineStart(line int) int {
	t.checkLine(line)
	return t.starts[line]
}

// Position returns the line containing offset and the column of offset on that line. An offset exactly at the start of a line maps to that line at column 0 (never
// to the end of the previous line). offset == Len() maps to the last line.
func (t *Table) Position(offset int) Position {
	t.checkOffset(offset)

	// Binary search for the last line starting at or before offset.
	lo, hi := 0, len(t.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo, Col: offset - t.starts[lo]}
}

// LineForOffset returns the line an insertion at offset should be attributed to. It is the line of Position(offset), except that the true end of the buffer maps
// one line past the last line, so content appended at the end renders after the final line instead of over it.
func (t *Table) LineForOffset(offset int) int {
	line := t.Position(offset).Line
	if offset == t.size {
		line++
	}
	return line
}

// Offset returns the offset of p. The column may point at the terminator slot of the line (col == CharsOnLine(line)), but not beyond.
func (t *Table) Offset(p Position) int {
	t.checkLine(p.Line)
	if p.Col < 0 || p.Col >= t.lengths[p.Line] {
		panic(fmt.Sprintf("lineindex: column %d out of range for line %d (%d chars)", p.Col, p.Line, t.lengths[p.Line]-1))
	}
	return t.starts[p.Line] + p.Col
}

func (t *Table) checkLine(line int) {
	if line < 0 || line >= len(t.lengths) {
		panic(fmt.Sprintf("lineindex: line %d out of range [0, %d)", line, len(t.lengths)))
	}
}

func (t *Table) checkOffset(offset int) {
	if offset < 0 || offset > t.size {
		panic(fmt.Sprintf("lineindex: offset %d out of range [0, %d]", offset, t.size))
	}
}
