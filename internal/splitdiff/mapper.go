package splitdiff

import (
	"strings"

	"github.com/codalotl/splitdiff/internal/diffengine"
	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/q/health"
)

// Mapped is the output of MapOps.
type Mapped struct {
	Hunks   []Hunk // one raw hunk per non-empty, non-equal op, in document order
	Clamped int    // number of hunks whose end line had to be clamped to their start line
}

// MapOps turns an edit script into raw hunks. ops must be the edit script from RIGHT (base) to LEFT (revision): Delete text lives in RIGHT, Insert text in LEFT.
// left and right index the two buffers.
//
// It returns a KindContract error if ops run past the end of either buffer or do not cover both buffers completely.
func MapOps(ops []diffengine.RawOp, left, right *lineindex.Table, charDiffs bool) (Mapped, error) {
	var out Mapped
	offLeft, offRight := 0, 0

	for i, op := range ops {
		n := len(op.Text)
		if n == 0 {
			continue
		}

		switch op.Op {
		case diffengine.OpEqual:
			offLeft += n
			offRight += n
			if offLeft > left.Len() || offRight > right.Len() {
				return Mapped{}, overrun(i, op, offLeft, offRight, left, right)
			}
		case diffengine.OpDelete:
			if offRight+n > right.Len() {
				return Mapped{}, overrun(i, op, offLeft, offRight+n, left, right)
			}
			h, clamped := mapDelete(op.Text, offLeft, offRight, left, right, charDiffs)
			out.Hunks = append(out.Hunks, h)
			if clamped {
				out.Clamped++
			}
			offRight += n
		case diffengine.OpInsert:
			if offLeft+n > left.Len() {
				return Mapped{}, overrun(i, op, offLeft+n, offRight, left, right)
			}
			h, clamped := mapInsert(op.Text, offLeft, offRight, left, right, charDiffs)
			out.Hunks = append(out.Hunks, h)
			if clamped {
				out.Clamped++
			}
			offLeft += n
		default:
			return Mapped{}, health.NewKindErr(health.KindContract, "unknown op code", "op", i, "code", int(op.Op))
		}
	}

	if offLeft != left.Len() || offRight != right.Len() {
		return Mapped{}, health.NewKindErr(health.KindContract, "edit script does not cover both buffers", "left_covered", offLeft, "left_len", left.Len(), "right_covered", offRight, "right_len", right.Len())
	}
	return out, nil
}

func overrun(i int, op diffengine.RawOp, offLeft, offRight int, left, right *lineindex.Table) error {
	return health.NewKindErr(health.KindContract, "edit script runs past end of buffer", "op", i, "kind", op.Op.String(), "left_offset", offLeft, "left_len", left.Len(), "right_offset", offRight, "right_len", right.Len())
}

// mapDelete maps text that exists only in RIGHT at offRight. The LEFT side gets an insertion point at offLeft.
func mapDelete(text string, offLeft, offRight int, left, right *lineindex.Table, charDiffs bool) (Hunk, bool) {
	m := mapSpan(text, right, offRight, left, offLeft)
	h := Hunk{
		LeftStartLine:    m.dstStart,
		LeftEndLine:      m.dstEnd,
		RightStartLine:   m.srcStart,
		RightEndLine:     m.srcEnd,
		LeftStartOffset:  offLeft,
		LeftEndOffset:    offLeft,
		RightStartOffset: offRight,
		RightEndOffset:   offRight + len(text),
	}
	if charDiffs {
		h.RightChars = []CharRange{m.chars}
	}
	return h, m.clamped
}

// mapInsert is the mirror of mapDelete: text exists only in LEFT at offLeft.
func mapInsert(text string, offLeft, offRight int, left, right *lineindex.Table, charDiffs bool) (Hunk, bool) {
	m := mapSpan(text, left, offLeft, right, offRight)
	h := Hunk{
		LeftStartLine:    m.srcStart,
		LeftEndLine:      m.srcEnd,
		RightStartLine:   m.dstStart,
		RightEndLine:     m.dstEnd,
		LeftStartOffset:  offLeft,
		LeftEndOffset:    offLeft + len(text),
		RightStartOffset: offRight,
		RightEndOffset:   offRight,
	}
	if charDiffs {
		h.LeftChars = []CharRange{m.chars}
	}
	return h, m.clamped
}

// mappedSpan is one op mapped onto its source buffer (where the text lives) and its destination buffer (where the text would be inserted).
type mappedSpan struct {
	srcStart, srcEnd int // half-open lines in the source buffer
	dstStart, dstEnd int // half-open lines in the destination buffer
	chars            CharRange
	clamped          bool
}

func mapSpan(text string, src *lineindex.Table, srcOffset int, dst *lineindex.Table, dstOffset int) mappedSpan {
	loc := locate(text, src, srcOffset)

	var m mappedSpan
	m.srcStart = loc.startLine
	m.srcEnd = loc.endLine + 1
	if m.srcEnd < m.srcStart {
		m.srcEnd = m.srcStart
		m.clamped = true
	}

	m.dstStart = insertionLine(text, dst, dstOffset)
	m.dstEnd = m.dstStart + insertionRows(text, loc, src, dst, m.dstStart)

	m.chars = CharRange{Start: loc.startCol, End: loc.endCol, LineStart: m.srcStart, LineEnd: m.srcEnd}
	return m
}

// location is where a span of text sits in its own buffer, after the line adjustments below. endLine is inclusive.
type location struct {
	startLine, startCol int
	endLine, endCol     int
}

// locate finds the lines text occupies when it starts at offset in t:
//   - A span starting on a line's newline (col == CharsOnLine, col > 0) starts on the next line: that line is not part of the change.
//   - A span ending exactly at a line start ends on the previous line.
//   - A span that started mid-line and ends with a newline also covers the line after that newline. The pre-adjustment column is used, so a span that begins
//     with a newline is measured by the lines it adds.
func locate(text string, t *lineindex.Table, offset int) location {
	start := t.Position(offset)
	end := t.Position(offset + len(text))
	loc := location{startLine: start.Line, startCol: start.Col, endLine: end.Line, endCol: end.Col}

	if start.Col > 0 && start.Col == t.CharsOnLine(start.Line) {
		loc.startLine++
		loc.startCol = 0
	}
	if end.Col == 0 {
		loc.endLine--
		loc.endCol = t.CharsOnLine(loc.endLine)
	}
	if start.Col > 0 && strings.HasSuffix(text, "\n") {
		loc.endLine++
		loc.endCol = 0
	}
	return loc
}

// insertionLine is the line of dst that text (which dst lacks) maps to when inserted at offset. Text starting with a newline inserted on the newline of a non-empty
// line belongs after that line.
func insertionLine(text string, dst *lineindex.Table, offset int) int {
	line := dst.LineForOffset(offset)
	if offset == dst.Len() || !strings.HasPrefix(text, "\n") {
		return line
	}
	p := dst.Position(offset)
	if p.Col > 0 && p.Col == dst.CharsOnLine(p.Line) {
		line++
	}
	return line
}

// insertionRows decides whether the destination side shows a full row (1) or a zero-height insertion marker (0). A full row is shown only when:
//   - the text starts mid-line, or is a same-line fragment shorter than its line (it is not one whole line being dropped), and
//   - the destination line exists and is non-empty, and
//   - the text starts before the end of its source line (it is not a pure append at end-of-line).
func insertionRows(text string, loc location, src, dst *lineindex.Table, dstLine int) int {
	srcChars := 0
	if loc.startLine < src.LineCount() {
		srcChars = src.CharsOnLine(loc.startLine)
	}

	partial := loc.startCol > 0 || (loc.startLine == loc.endLine && len(text) < srcChars)
	if !partial {
		return 0
	}
	if dstLine >= dst.LineCount() || dst.CharsOnLine(dstLine) == 0 {
		return 0
	}
	if loc.startCol >= srcChars {
		return 0
	}
	return 1
}
