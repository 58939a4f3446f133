package splitdiff

import (
	"errors"
	"testing"

	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_WholeLine(t *testing.T) {
	left := "start\nend"
	right := "start\nsomething new\nend"
	h := Hunk{
		LeftStartLine: 1, LeftEndLine: 1, RightStartLine: 1, RightEndLine: 2,
		LeftStartOffset: 6, LeftEndOffset: 6, RightStartOffset: 6, RightEndOffset: 20,
	}

	rtl, err := Apply(h, RightToLeft, left, right)
	require.NoError(t, err)
	assert.Equal(t, Splice{
		Target:      SideLeft,
		Text:        "something new\n",
		Range:       Range{Start: lineindex.Position{Line: 1, Col: 0}, End: lineindex.Position{Line: 1, Col: 0}},
		StartOffset: 6,
		EndOffset:   6,
	}, rtl)
	got, err := rtl.Apply(left)
	require.NoError(t, err)
	assert.Equal(t, right, got)

	ltr, err := Apply(h, LeftToRight, left, right)
	require.NoError(t, err)
	assert.Equal(t, SideRight, ltr.Target)
	assert.Equal(t, "", ltr.Text)
	assert.Equal(t, Range{Start: lineindex.Position{Line: 1, Col: 0}, End: lineindex.Position{Line: 2, Col: 0}}, ltr.Range)
	got, err = ltr.Apply(right)
	require.NoError(t, err)
	assert.Equal(t, left, got)
}

func TestApply_SubLine(t *testing.T) {
	left := "abXc"
	right := "abc"
	h := Hunk{
		LeftStartLine: 0, LeftEndLine: 1, RightStartLine: 0, RightEndLine: 1,
		LeftStartOffset: 2, LeftEndOffset: 3, RightStartOffset: 2, RightEndOffset: 2,
	}

	ltr, err := Apply(h, LeftToRight, left, right)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: lineindex.Position{Line: 0, Col: 2}, End: lineindex.Position{Line: 0, Col: 2}}, ltr.Range)
	got, err := ltr.Apply(right)
	require.NoError(t, err)
	assert.Equal(t, "abXc", got)

	rtl, err := Apply(h, RightToLeft, left, right)
	require.NoError(t, err)
	got, err = rtl.Apply(left)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestApply_OutOfRange(t *testing.T) {
	h := Hunk{LeftStartOffset: 0, LeftEndOffset: 10, RightStartOffset: 0, RightEndOffset: 1}
	_, err := Apply(h, LeftToRight, "short", "x")
	require.Error(t, err)
	assert.True(t, health.IsContract(err))

	_, err = Splice{StartOffset: 3, EndOffset: 2}.Apply("abcdef")
	assert.True(t, health.IsContract(err))

	_, err = Splice{StartOffset: 0, EndOffset: 7}.Apply("abcdef")
	assert.True(t, health.IsContract(err))
}

func TestResultMerge(t *testing.T) {
	left := "start\nend"
	right := "start\nsomething new\nend"
	r, err := Compute(left, right, Config{})
	require.NoError(t, err)
	require.Len(t, r.Hunks, 1)

	newLeft, newRight, err := r.Merge(0, RightToLeft, left, right)
	require.NoError(t, err)
	assert.Equal(t, "start\nsomething new\nend", newLeft)
	assert.Equal(t, right, newRight)

	newLeft, newRight, err = r.Merge(0, LeftToRight, left, right)
	require.NoError(t, err)
	assert.Equal(t, left, newLeft)
	assert.Equal(t, "start\nend", newRight)
}

func TestResultMerge_Stale(t *testing.T) {
	left := "start\nend"
	right := "start\nsomething new\nend"
	r, err := Compute(left, right, Config{})
	require.NoError(t, err)

	edited := "start\n\nend"
	gotLeft, gotRight, err := r.Merge(0, RightToLeft, edited, right)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStale))
	assert.Equal(t, health.KindStale, health.KindOf(err))
	assert.Equal(t, edited, gotLeft, "buffers returned unchanged")
	assert.Equal(t, right, gotRight)

	_, _, err = r.Merge(0, LeftToRight, left, right+"x")
	assert.ErrorIs(t, err, ErrStale)
}

func TestResultMerge_BadIndex(t *testing.T) {
	r, err := Compute("a", "b", Config{})
	require.NoError(t, err)

	for _, i := range []int{-1, len(r.Hunks)} {
		_, _, err := r.Merge(i, LeftToRight, "a", "b")
		require.Error(t, err)
		assert.True(t, health.IsContract(err))
	}
}

func TestDirection(t *testing.T) {
	assert.Equal(t, SideLeft, LeftToRight.Source())
	assert.Equal(t, SideRight, LeftToRight.Target())
	assert.Equal(t, SideRight, RightToLeft.Source())
	assert.Equal(t, SideLeft, RightToLeft.Target())

	for in, want := range map[string]Direction{"ltr": LeftToRight, ">": LeftToRight, "right-to-left": RightToLeft, "rtl": RightToLeft} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)
}

func TestHunkCanMerge(t *testing.T) {
	marker := lines(1, 1, 1, 2)
	assert.False(t, marker.CanMerge(LeftToRight))
	assert.True(t, marker.CanMerge(RightToLeft))

	both := lines(0, 1, 0, 1)
	assert.True(t, both.CanMerge(LeftToRight))
	assert.True(t, both.CanMerge(RightToLeft))
}
