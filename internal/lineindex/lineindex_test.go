package lineindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		lengths []int
	}{
		{name: "empty", text: "", lengths: []int{1}},
		{name: "no newline", text: "abc", lengths: []int{4}},
		{name: "trailing newline", text: "abc\n", lengths: []int{4, 1}},
		{name: "two lines", text: "start\nend", lengths: []int{6, 4}},
		{name: "blank lines", text: "a\n\n\nb", lengths: []int{2, 1, 1, 2}},
		{name: "only newline", text: "\n", lengths: []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Build(tt.text)
			assert.Equal(t, tt.lengths, tbl.Lengths())
			assert.Equal(t, len(tt.lengths), tbl.LineCount())
			assert.Equal(t, len(tt.text), tbl.Len())

			sum := 0
			for _, l := range tbl.Lengths() {
				sum += l
			}
			assert.Equal(t, len(tt.text)+1, sum)
		})
	}
}

func TestCharsOnLine(t *testing.T) {
	tbl := Build("start\n\nsomething new\nend")
	assert.Equal(t, 5, tbl.CharsOnLine(0))
	assert.Equal(t, 0, tbl.CharsOnLine(1))
	assert.Equal(t, 13, tbl.CharsOnLine(2))
	assert.Equal(t, 3, tbl.CharsOnLine(3))

	assert.Panics(t, func() { tbl.CharsOnLine(4) })
	assert.Panics(t, func() { tbl.CharsOnLine(-1) })
}

func TestPosition(t *testing.T) {
	tbl := Build("start\nend")

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{4, Position{0, 4}},
		{5, Position{0, 5}}, // on the newline
		{6, Position{1, 0}}, // line start maps to the next line
		{8, Position{1, 2}},
		{9, Position{1, 3}}, // end of buffer
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tbl.Position(tt.offset), "offset %d", tt.offset)
	}

	assert.Panics(t, func() { tbl.Position(10) })
	assert.Panics(t, func() { tbl.Position(-1) })
}

func TestPosition_TrailingNewline(t *testing.T) {
	tbl := Build("a\nb\n")
	assert.Equal(t, Position{1, 0}, tbl.Position(2))
	assert.Equal(t, Position{1, 1}, tbl.Position(3))
	assert.Equal(t, Position{2, 0}, tbl.Position(4))
}

func TestLineForOffset(t *testing.T) {
	tbl := Build("start\nend")
	assert.Equal(t, 0, tbl.LineForOffset(0))
	assert.Equal(t, 0, tbl.LineForOffset(5))
	assert.Equal(t, 1, tbl.LineForOffset(6))
	assert.Equal(t, 1, tbl.LineForOffset(8))
	assert.Equal(t, 2, tbl.LineForOffset(9)) // appended content goes after the last line

	empty := Build("")
	assert.Equal(t, 1, empty.LineForOffset(0))
}

func TestOffset(t *testing.T) {
	text := "start\n\nsomething new\nend"
	tbl := Build(text)
	for off := 0; off <= len(text); off++ {
		require.Equal(t, off, tbl.Offset(tbl.Position(off)), "offset %d", off)
	}
	assert.Equal(t, 7, tbl.LineStart(2))
	assert.Panics(t, func() { tbl.Offset(Position{Line: 0, Col: 6}) })
	assert.Panics(t, func() { tbl.Offset(Position{Line: 4, Col: 0}) })
}
