package splitdiff

import (
	"errors"

	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/q/health"
)

// ErrStale is returned (wrapped) when a merge is requested against buffers that are no longer the ones the hunks were computed from.
var ErrStale = errors.New("hunks are stale")

// Splice is one edit to one buffer: replace Range (equivalently, bytes [StartOffset, EndOffset)) of the Target buffer with Text.
type Splice struct {
	Target      Side
	Text        string
	Range       Range
	StartOffset int
	EndOffset   int
}

// Apply returns target with the splice applied. target must be the buffer the splice was made for.
func (s Splice) Apply(target string) (string, error) {
	if s.StartOffset < 0 || s.EndOffset < s.StartOffset || s.EndOffset > len(target) {
		return "", health.NewKindErr(health.KindContract, "splice out of range", "target", s.Target.String(), "start", s.StartOffset, "end", s.EndOffset, "len", len(target))
	}
	return target[:s.StartOffset] + s.Text + target[s.EndOffset:], nil
}

// Apply builds the splice that copies h's content from dir's source side over h's range in dir's target side. left and right must be the buffers h was computed
// from.
//
// The copied text is the source's offset span. The replaced range is the target's offset span: for whole-line hunks that is exactly
// (targetStartLine, 0)..(targetEndLine, 0); for sub-line hunks it keeps the unchanged parts of the target's lines intact.
func Apply(h Hunk, dir Direction, left, right string) (Splice, error) {
	buffers := [2]string{SideLeft: left, SideRight: right}
	src, dst := dir.Source(), dir.Target()

	srcStart, srcEnd := h.Offsets(src)
	dstStart, dstEnd := h.Offsets(dst)
	if !validSpan(srcStart, srcEnd, len(buffers[src])) || !validSpan(dstStart, dstEnd, len(buffers[dst])) {
		return Splice{}, health.NewKindErr(health.KindContract, "hunk offsets out of range", "hunk", h.String(), "dir", dir.String(), "left_len", len(left), "right_len", len(right))
	}

	t := lineindex.Build(buffers[dst])
	return Splice{
		Target:      dst,
		Text:        buffers[src][srcStart:srcEnd],
		Range:       Range{Start: t.Position(dstStart), End: t.Position(dstEnd)},
		StartOffset: dstStart,
		EndOffset:   dstEnd,
	}, nil
}

func validSpan(start, end, n int) bool {
	return start >= 0 && start <= end && end <= n
}

// Merge applies hunk index of r in dir, returning the updated buffers (only the target differs from its input). left and right must be the buffers r was computed
// from; otherwise it returns an error wrapping ErrStale and the host must recompute before merging. After a successful merge r is stale too.
func (r Result) Merge(index int, dir Direction, left, right string) (newLeft, newRight string, err error) {
	if left != r.Left || right != r.Right {
		return left, right, health.WrapKind(health.KindStale, "merge refused", ErrStale, "hunk", index, "dir", dir.String())
	}
	if index < 0 || index >= len(r.Hunks) {
		return left, right, health.NewKindErr(health.KindContract, "hunk index out of range", "hunk", index, "count", len(r.Hunks))
	}

	s, err := Apply(r.Hunks[index], dir, left, right)
	if err != nil {
		return left, right, err
	}

	if s.Target == SideLeft {
		newLeft, err = s.Apply(left)
		return newLeft, right, err
	}
	newRight, err = s.Apply(right)
	return left, newRight, err
}
