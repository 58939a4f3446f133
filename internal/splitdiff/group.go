package splitdiff

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Granularity controls how aggressively nearby raw hunks are folded together.
type Granularity int

const (
	// GranularityBroad folds hunks whose starts are within one line of a group's ends on both sides.
	GranularityBroad Granularity = iota

	// GranularitySpecific folds only hunks that touch a group exactly on both sides.
	GranularitySpecific
)

func (g Granularity) String() string {
	if g == GranularitySpecific {
		return "specific"
	}
	return "broad"
}

// tolerance is the maximum line distance at which a hunk is folded into a group.
func (g Granularity) tolerance() int {
	if g == GranularitySpecific {
		return 0
	}
	return 1
}

// ParseGranularity parses "broad" or "specific" (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "broad", "":
		return GranularityBroad, nil
	case "specific":
		return GranularitySpecific, nil
	}
	return 0, fmt.Errorf("unknown granularity %q (want broad or specific)", s)
}

func (g Granularity) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Granularity) UnmarshalText(b []byte) error {
	parsed, err := ParseGranularity(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Group folds raw hunks into groups. Each hunk, in order, joins the first existing group whose line ends are within the granularity's tolerance of the hunk's
// line starts on both sides; otherwise it starts a new group. Joining takes the min of starts and the max of ends (lines and offsets) and appends char ranges.
// Degenerate groups are dropped. hunks is not modified.
func Group(hunks []Hunk, g Granularity) []Hunk {
	t := g.tolerance()
	var groups []Hunk

	for _, h := range hunks {
		joined := false
		for i := range groups {
			if abs(h.LeftStartLine-groups[i].LeftEndLine) <= t && abs(h.RightStartLine-groups[i].RightEndLine) <= t {
				groups[i] = fold(groups[i], h)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, h.clone())
		}
	}

	return lo.Reject(groups, func(h Hunk, _ int) bool {
		return h.Degenerate()
	})
}

// fold merges h into group.
func fold(group, h Hunk) Hunk {
	group.LeftStartLine = min(group.LeftStartLine, h.LeftStartLine)
	group.LeftEndLine = max(group.LeftEndLine, h.LeftEndLine)
	group.RightStartLine = min(group.RightStartLine, h.RightStartLine)
	group.RightEndLine = max(group.RightEndLine, h.RightEndLine)

	group.LeftStartOffset = min(group.LeftStartOffset, h.LeftStartOffset)
	group.LeftEndOffset = max(group.LeftEndOffset, h.LeftEndOffset)
	group.RightStartOffset = min(group.RightStartOffset, h.RightStartOffset)
	group.RightEndOffset = max(group.RightEndOffset, h.RightEndOffset)

	group.LeftChars = append(group.LeftChars, h.LeftChars...)
	group.RightChars = append(group.RightChars, h.RightChars...)
	return group
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
