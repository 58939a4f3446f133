// Package splitdiff turns a character-level edit script between two buffers into line-aligned hunks for a side-by-side view, and applies hunks in either
// direction.
//
// LEFT is buffer A and RIGHT is buffer B. A pass (Differ.Diff or Compute) runs:
//
//	lineindex.Build(left), lineindex.Build(right)
//	Engine.Diff(right, left)      // right is the base
//	MapOps                        // one raw hunk per non-equal op
//	Group                         // fold nearby hunks by Granularity
//	ResolveConflicts              // drop hunks whose merges would interleave
//
// Hunks are positional: they are only meaningful against the exact buffers they were computed from, which the Result keeps. Result.Merge refuses to apply a
// hunk to any other buffers (ErrStale). After a merge, callers recompute.
//
// All offsets and columns are byte offsets. Buffers are not normalized: callers that want CRLF and LF to compare equal should run diffengine.NormalizeEOL when
// loading them.
package splitdiff
