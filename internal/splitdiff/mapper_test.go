package splitdiff

import (
	"testing"

	"github.com/codalotl/splitdiff/internal/diffengine"
	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	del = diffengine.OpDelete
	eq  = diffengine.OpEqual
	ins = diffengine.OpInsert
)

// mapStatic maps ops, which must be the edit script from right to left.
func mapStatic(t *testing.T, left, right string, ops []diffengine.RawOp, charDiffs bool) []Hunk {
	t.Helper()
	require.NoError(t, diffengine.Validate(ops, right, left), "bad test ops")
	m, err := MapOps(ops, lineindex.Build(left), lineindex.Build(right), charDiffs)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Clamped)
	return m.Hunks
}

func TestMapOps(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		ops   []diffengine.RawOp
		want  []Hunk
	}{
		{
			name:  "line only in right",
			left:  "start\nend",
			right: "start\nsomething new\nend",
			ops:   []diffengine.RawOp{{eq, "start\n"}, {del, "something new\n"}, {eq, "end"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 1, RightStartLine: 1, RightEndLine: 2,
				LeftStartOffset: 6, LeftEndOffset: 6, RightStartOffset: 6, RightEndOffset: 20,
				RightChars: []CharRange{{Start: 0, End: 13, LineStart: 1, LineEnd: 2}},
			}},
		},
		{
			name:  "insert at buffer start",
			left:  "new\nabc",
			right: "abc",
			ops:   []diffengine.RawOp{{ins, "new\n"}, {eq, "abc"}},
			want: []Hunk{{
				LeftStartLine: 0, LeftEndLine: 1, RightStartLine: 0, RightEndLine: 0,
				LeftStartOffset: 0, LeftEndOffset: 4, RightStartOffset: 0, RightEndOffset: 0,
				LeftChars: []CharRange{{Start: 0, End: 3, LineStart: 0, LineEnd: 1}},
			}},
		},
		{
			name:  "mid-line insert",
			left:  "abXc",
			right: "abc",
			ops:   []diffengine.RawOp{{eq, "ab"}, {ins, "X"}, {eq, "c"}},
			want: []Hunk{{
				LeftStartLine: 0, LeftEndLine: 1, RightStartLine: 0, RightEndLine: 1,
				LeftStartOffset: 2, LeftEndOffset: 3, RightStartOffset: 2, RightEndOffset: 2,
				LeftChars: []CharRange{{Start: 2, End: 3, LineStart: 0, LineEnd: 1}},
			}},
		},
		{
			name:  "append at end of line",
			left:  "abX\ncd",
			right: "ab\ncd",
			ops:   []diffengine.RawOp{{eq, "ab"}, {ins, "X"}, {eq, "\ncd"}},
			want: []Hunk{{
				LeftStartLine: 0, LeftEndLine: 1, RightStartLine: 0, RightEndLine: 1,
				LeftStartOffset: 2, LeftEndOffset: 3, RightStartOffset: 2, RightEndOffset: 2,
				LeftChars: []CharRange{{Start: 2, End: 3, LineStart: 0, LineEnd: 1}},
			}},
		},
		{
			name:  "append at end of last line",
			left:  "abc\nxyz",
			right: "abc\nxy",
			ops:   []diffengine.RawOp{{eq, "abc\nxy"}, {ins, "z"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 2, RightStartLine: 2, RightEndLine: 2,
				LeftStartOffset: 6, LeftEndOffset: 7, RightStartOffset: 6, RightEndOffset: 6,
				LeftChars: []CharRange{{Start: 2, End: 3, LineStart: 1, LineEnd: 2}},
			}},
		},
		{
			name:  "span starting with newline",
			left:  "a\nb\nc",
			right: "a\nc",
			ops:   []diffengine.RawOp{{eq, "a"}, {ins, "\nb"}, {eq, "\nc"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 2, RightStartLine: 1, RightEndLine: 1,
				LeftStartOffset: 1, LeftEndOffset: 3, RightStartOffset: 1, RightEndOffset: 1,
				LeftChars: []CharRange{{Start: 0, End: 1, LineStart: 1, LineEnd: 2}},
			}},
		},
		{
			name:  "same line ending with newline",
			left:  "a\nb\nc",
			right: "a\nc",
			ops:   []diffengine.RawOp{{eq, "a\n"}, {ins, "b\n"}, {eq, "c"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 2, RightStartLine: 1, RightEndLine: 1,
				LeftStartOffset: 2, LeftEndOffset: 4, RightStartOffset: 2, RightEndOffset: 2,
				LeftChars: []CharRange{{Start: 0, End: 1, LineStart: 1, LineEnd: 2}},
			}},
		},
		{
			name:  "mid-line span ending with newline",
			left:  "abcd",
			right: "abX\ncd",
			ops:   []diffengine.RawOp{{eq, "ab"}, {del, "X\n"}, {eq, "cd"}},
			want: []Hunk{{
				LeftStartLine: 0, LeftEndLine: 1, RightStartLine: 0, RightEndLine: 2,
				LeftStartOffset: 2, LeftEndOffset: 2, RightStartOffset: 2, RightEndOffset: 4,
				RightChars: []CharRange{{Start: 2, End: 0, LineStart: 0, LineEnd: 2}},
			}},
		},
		{
			name:  "blank line after newline",
			left:  "a\n\nb",
			right: "a\nb",
			ops:   []diffengine.RawOp{{eq, "a\n"}, {ins, "\n"}, {eq, "b"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 2, RightStartLine: 1, RightEndLine: 1,
				LeftStartOffset: 2, LeftEndOffset: 3, RightStartOffset: 2, RightEndOffset: 2,
				LeftChars: []CharRange{{Start: 0, End: 0, LineStart: 1, LineEnd: 2}},
			}},
		},
		{
			name:  "blank line on newline",
			left:  "a\n\nb",
			right: "a\nb",
			ops:   []diffengine.RawOp{{eq, "a"}, {ins, "\n"}, {eq, "\nb"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 2, RightStartLine: 1, RightEndLine: 1,
				LeftStartOffset: 1, LeftEndOffset: 2, RightStartOffset: 1, RightEndOffset: 1,
				LeftChars: []CharRange{{Start: 0, End: 0, LineStart: 1, LineEnd: 2}},
			}},
		},
		{
			name:  "everything removed",
			left:  "",
			right: "abc",
			ops:   []diffengine.RawOp{{del, "abc"}},
			want: []Hunk{{
				LeftStartLine: 1, LeftEndLine: 1, RightStartLine: 0, RightEndLine: 1,
				LeftStartOffset: 0, LeftEndOffset: 0, RightStartOffset: 0, RightEndOffset: 3,
				RightChars: []CharRange{{Start: 0, End: 3, LineStart: 0, LineEnd: 1}},
			}},
		},
		{
			name:  "empty ops skipped",
			left:  "same",
			right: "same",
			ops:   []diffengine.RawOp{{del, ""}, {eq, "same"}, {ins, ""}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapStatic(t, tt.left, tt.right, tt.ops, true)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapOps_NoCharDiffs(t *testing.T) {
	got := mapStatic(t, "abXc", "abc", []diffengine.RawOp{{eq, "ab"}, {ins, "X"}, {eq, "c"}}, false)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].LeftChars)
	assert.Nil(t, got[0].RightChars)
	assert.Equal(t, 1, got[0].LeftLines())
}

func TestMapOps_SameLinesForEitherNewlinePlacement(t *testing.T) {
	// diff-match-patch may place a blank-line insertion on either side of the neighboring newline.
	left := "x\ny\n\nz\n"
	right := "x\ny\nz\n"
	a := mapStatic(t, left, right, []diffengine.RawOp{{eq, "x\ny\n"}, {ins, "\n"}, {eq, "z\n"}}, false)
	b := mapStatic(t, left, right, []diffengine.RawOp{{eq, "x\ny"}, {ins, "\n"}, {eq, "\nz\n"}}, false)
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	for _, h := range []Hunk{a[0], b[0]} {
		assert.Equal(t, 2, h.LeftStartLine)
		assert.Equal(t, 3, h.LeftEndLine)
		assert.Equal(t, 2, h.RightStartLine)
		assert.Equal(t, 2, h.RightEndLine)
	}
}

func TestMapOps_ContractViolations(t *testing.T) {
	left := lineindex.Build("ab")
	right := lineindex.Build("ab")

	tests := []struct {
		name string
		ops  []diffengine.RawOp
		msg  string
	}{
		{name: "equal overrun", ops: []diffengine.RawOp{{eq, "abc"}}, msg: "past end"},
		{name: "delete overrun", ops: []diffengine.RawOp{{eq, "ab"}, {del, "c"}}, msg: "past end"},
		{name: "insert overrun", ops: []diffengine.RawOp{{eq, "a"}, {ins, "bc"}}, msg: "past end"},
		{name: "short", ops: []diffengine.RawOp{{eq, "a"}}, msg: "does not cover"},
		{name: "unknown code", ops: []diffengine.RawOp{{diffengine.Op(5), "ab"}}, msg: "unknown op code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapOps(tt.ops, left, right, true)
			require.Error(t, err)
			assert.True(t, health.IsContract(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
