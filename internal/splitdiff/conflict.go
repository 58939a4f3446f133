package splitdiff

import "github.com/samber/lo"

// ResolveConflicts drops hunks whose merges would interleave with another hunk's merge and so cannot both be offered safely.
//
// For every pair of distinct hunks a (with LEFT lines, mergeable left-to-right) and b (with RIGHT lines, mergeable right-to-left):
//   - if b's LEFT start lies strictly inside a's LEFT range, b is dropped;
//   - if a's RIGHT start lies strictly inside b's RIGHT range, a is dropped.
//
// All decisions are made against the input; survivors keep their input order. hunks is not modified.
func ResolveConflicts(hunks []Hunk) []Hunk {
	drop := make([]bool, len(hunks))

	for i, a := range hunks {
		if a.LeftLines() <= 0 {
			continue
		}
		for j, b := range hunks {
			if i == j || b.RightLines() <= 0 {
				continue
			}
			if strictlyInside(b.LeftStartLine, a.LeftStartLine, a.LeftEndLine) {
				drop[j] = true
			}
			if strictlyInside(a.RightStartLine, b.RightStartLine, b.RightEndLine) {
				drop[i] = true
			}
		}
	}

	return lo.Filter(hunks, func(_ Hunk, i int) bool {
		return !drop[i]
	})
}

func strictlyInside(n, start, end int) bool {
	return start < n && n < end
}
