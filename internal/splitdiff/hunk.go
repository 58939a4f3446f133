package splitdiff

import (
	"fmt"

	"github.com/codalotl/splitdiff/internal/lineindex"
)

// Hunk is one line-aligned difference region spanning both buffers.
//
// Line ranges are half-open; a range with End == Start is an insertion point (a zero-height marker drawn above line Start). Offsets are byte offsets into the
// buffer texts the Hunk was computed from and are the ground truth for merges.
type Hunk struct {
	LeftStartLine  int `json:"leftStartLine" yaml:"leftStartLine"`
	LeftEndLine    int `json:"leftEndLine" yaml:"leftEndLine"`
	RightStartLine int `json:"rightStartLine" yaml:"rightStartLine"`
	RightEndLine   int `json:"rightEndLine" yaml:"rightEndLine"`

	LeftStartOffset  int `json:"leftStartOffset" yaml:"leftStartOffset"`
	LeftEndOffset    int `json:"leftEndOffset" yaml:"leftEndOffset"`
	RightStartOffset int `json:"rightStartOffset" yaml:"rightStartOffset"`
	RightEndOffset   int `json:"rightEndOffset" yaml:"rightEndOffset"`

	LeftChars  []CharRange `json:"leftChars,omitempty" yaml:"leftChars,omitempty"`
	RightChars []CharRange `json:"rightChars,omitempty" yaml:"rightChars,omitempty"`
}

// CharRange is an intra-line highlight from (LineStart, Start) to (LineEnd-1, End). LineEnd is exclusive, matching the Hunk line ranges it was derived from.
// A span that starts mid-line and ends with a newline also covers the next line; End is 0 there, so nothing on that line is highlighted.
type CharRange struct {
	Start     int `json:"start" yaml:"start"`
	End       int `json:"end" yaml:"end"`
	LineStart int `json:"lineStart" yaml:"lineStart"`
	LineEnd   int `json:"lineEnd" yaml:"lineEnd"`
}

// LeftLines returns the number of LEFT lines the hunk covers.
func (h Hunk) LeftLines() int {
	return h.LeftEndLine - h.LeftStartLine
}

// RightLines returns the number of RIGHT lines the hunk covers.
func (h Hunk) RightLines() int {
	return h.RightEndLine - h.RightStartLine
}

// Degenerate reports whether the hunk has zero line span on both sides. Degenerate hunks never leave the pipeline.
func (h Hunk) Degenerate() bool {
	return h.LeftStartLine == h.LeftEndLine && h.RightStartLine == h.RightEndLine
}

// CanMerge reports whether a host should offer merging h in dir: the source side must contain lines to copy.
func (h Hunk) CanMerge(dir Direction) bool {
	if dir == LeftToRight {
		return h.LeftLines() > 0
	}
	return h.RightLines() > 0
}

// Lines returns the line range of side.
func (h Hunk) Lines(side Side) (start, end int) {
	if side == SideLeft {
		return h.LeftStartLine, h.LeftEndLine
	}
	return h.RightStartLine, h.RightEndLine
}

// Offsets returns the byte offset range of side.
func (h Hunk) Offsets(side Side) (start, end int) {
	if side == SideLeft {
		return h.LeftStartOffset, h.LeftEndOffset
	}
	return h.RightStartOffset, h.RightEndOffset
}

// Chars returns the char ranges of side.
func (h Hunk) Chars(side Side) []CharRange {
	if side == SideLeft {
		return h.LeftChars
	}
	return h.RightChars
}

func (h Hunk) String() string {
	return fmt.Sprintf("L[%d,%d) R[%d,%d) Loff[%d,%d) Roff[%d,%d)", h.LeftStartLine, h.LeftEndLine, h.RightStartLine, h.RightEndLine, h.LeftStartOffset, h.LeftEndOffset, h.RightStartOffset, h.RightEndOffset)
}

// clone returns h with its char slices copied, so that folding into the clone never writes through to h.
func (h Hunk) clone() Hunk {
	h.LeftChars = append([]CharRange(nil), h.LeftChars...)
	h.RightChars = append([]CharRange(nil), h.RightChars...)
	return h
}

// Side names one of the two buffers.
type Side int

const (
	SideLeft  Side = iota // buffer A
	SideRight             // buffer B
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Direction is a merge direction.
type Direction int

const (
	LeftToRight Direction = iota // copy LEFT content over the RIGHT range
	RightToLeft                  // copy RIGHT content over the LEFT range
)

func (d Direction) String() string {
	if d == LeftToRight {
		return "ltr"
	}
	return "rtl"
}

// Source returns the side content is copied from.
func (d Direction) Source() Side {
	if d == LeftToRight {
		return SideLeft
	}
	return SideRight
}

// Target returns the side that is modified.
func (d Direction) Target() Side {
	return d.Source().Other()
}

// ParseDirection parses "ltr" or "rtl" (also accepted: "left-to-right", "right-to-left", ">", "<").
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "ltr", "left-to-right", ">":
		return LeftToRight, nil
	case "rtl", "right-to-left", "<":
		return RightToLeft, nil
	}
	return 0, fmt.Errorf("unknown direction %q (want ltr or rtl)", s)
}

// Range is a half-open range of positions in one buffer.
type Range struct {
	Start lineindex.Position
	End   lineindex.Position
}
