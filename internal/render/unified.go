package render

import (
	"fmt"
	"strings"

	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/splitdiff"
)

// Unified returns res as a unified diff from RIGHT ("---", the base) to LEFT ("+++"). opts.Context lines of context surround each change (negative: the whole
// file), and changes separated by at most 2*Context unchanged lines share one @@ block. Only Color, Context, LeftTitle and RightTitle are used.
//
// Hunks that start or end mid-line are widened to whole lines. The result is empty when there are no hunks, including when res is suppressed.
func Unified(res splitdiff.Result, opts Options) string {
	// Colors (ANSI). Applied only if opts.Color.
	const (
		red     = "\x1b[31m"
		green   = "\x1b[32m"
		magenta = "\x1b[35m"
	)

	colorize := func(s, code string) string {
		if !opts.Color {
			return s
		}
		return code + s + reset
	}

	if len(res.Hunks) == 0 {
		return ""
	}

	old := newSideText(res.Right)
	cur := newSideText(res.Left)
	changes := lineChanges(res, old, cur)
	if len(changes) == 0 {
		return ""
	}

	ctx := opts.Context
	if ctx < 0 {
		ctx = max(old.n, cur.n)
	}

	fromName, toName := opts.RightTitle, opts.LeftTitle
	if fromName == "" {
		fromName = "right"
	}
	if toName == "" {
		toName = "left"
	}

	out := []string{colorize("--- "+fromName, cyanBold), colorize("+++ "+toName, cyanBold)}

	for i := 0; i < len(changes); {
		// Extend the block while the next change is close enough to share context.
		j := i + 1
		for j < len(changes) && changes[j].rs-changes[j-1].re <= 2*ctx {
			j++
		}
		first, last := changes[i], changes[j-1]

		pre := min(ctx, first.rs, first.ls)
		post := min(ctx, old.n-last.re, cur.n-last.le)

		var lines []string
		oldCount, newCount := 0, 0
		context := func(from, to int) {
			for k := from; k < to; k++ {
				lines = append(lines, " "+old.line(k))
				lines = append(lines, old.noEOL(k)...)
				oldCount++
				newCount++
			}
		}

		context(first.rs-pre, first.rs)
		for k := i; k < j; k++ {
			c := changes[k]
			for n := c.rs; n < c.re; n++ {
				lines = append(lines, colorize("-"+old.line(n), red))
				lines = append(lines, old.noEOL(n)...)
				oldCount++
			}
			for n := c.ls; n < c.le; n++ {
				lines = append(lines, colorize("+"+cur.line(n), green))
				lines = append(lines, cur.noEOL(n)...)
				newCount++
			}
			if k+1 < j {
				context(c.re, changes[k+1].rs)
			}
		}
		context(last.re, last.re+post)

		oldStart := first.rs - pre + 1
		if oldCount == 0 {
			oldStart--
		}
		newStart := first.ls - pre + 1
		if newCount == 0 {
			newStart--
		}

		out = append(out, colorize(fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount), magenta))
		out = append(out, lines...)
		i = j
	}

	return strings.Join(out, "\n") + "\n"
}

// sideText is one buffer split into its real lines: the empty line after a trailing newline is not one.
type sideText struct {
	text string
	t    *lineindex.Table
	n    int
}

func newSideText(text string) sideText {
	t := lineindex.Build(text)
	n := t.LineCount()
	if text == "" || strings.HasSuffix(text, "\n") {
		n--
	}
	return sideText{text: text, t: t, n: n}
}

func (s sideText) line(i int) string {
	start := s.t.LineStart(i)
	return s.text[start : start+s.t.CharsOnLine(i)]
}

// noEOL returns the "no newline" marker if line i is the last line and has no newline.
func (s sideText) noEOL(i int) []string {
	if i == s.n-1 && !strings.HasSuffix(s.text, "\n") {
		return []string{`\ No newline at end of file`}
	}
	return nil
}

// lineChange is a hunk widened to whole lines: old lines [rs, re) are replaced by new lines [ls, le).
type lineChange struct {
	rs, re int
	ls, le int
}

// lineChanges widens every hunk to whole lines, using the hunk offsets, and merges changes that end up sharing lines.
func lineChanges(res splitdiff.Result, old, cur sideText) []lineChange {
	var out []lineChange
	for _, h := range res.Hunks {
		ra, rb := h.RightStartOffset, h.RightEndOffset
		la, lb := h.LeftStartOffset, h.LeftEndOffset
		if !validSpan(ra, rb, len(old.text)) || !validSpan(la, lb, len(cur.text)) {
			continue
		}
		ra, rb, la, lb = rotateNewline(old.text, ra, rb, cur.text, la, lb)

		ra -= old.t.Position(ra).Col
		la -= cur.t.Position(la).Col
		if !wholeLines(old.text, ra, rb) || !wholeLines(cur.text, la, lb) {
			rb = lineEnd(old.text, rb)
			lb = lineEnd(cur.text, lb)
		}

		c := lineChange{rs: old.t.Position(ra).Line, ls: cur.t.Position(la).Line}
		c.re = endLine(old.t, ra, rb)
		c.le = endLine(cur.t, la, lb)
		if c.rs == c.re && c.ls == c.le {
			continue
		}

		if n := len(out); n > 0 && (c.rs < out[n-1].re || c.ls < out[n-1].le) {
			prev := &out[n-1]
			prev.re = max(prev.re, c.re)
			prev.le = max(prev.le, c.le)
			continue
		}
		out = append(out, c)
	}
	return out
}

// rotateNewline turns a pure insertion or deletion of "\nX" sitting before a newline into the equivalent "X\n" after it, so that it covers whole lines.
func rotateNewline(old string, ra, rb int, cur string, la, lb int) (int, int, int, int) {
	rotatable := func(text string, a, b int) bool {
		return b > a && text[a] == '\n' && b < len(text) && text[b] == '\n'
	}
	switch {
	case ra == rb && rotatable(cur, la, lb) && ra < len(old) && old[ra] == '\n':
		return ra + 1, rb + 1, la + 1, lb + 1
	case la == lb && rotatable(old, ra, rb) && la < len(cur) && cur[la] == '\n':
		return ra + 1, rb + 1, la + 1, lb + 1
	}
	return ra, rb, la, lb
}

func validSpan(a, b, n int) bool {
	return a >= 0 && a <= b && b <= n
}

// wholeLines reports whether [a, b) (with a at a line start) is empty or ends with a newline.
func wholeLines(text string, a, b int) bool {
	return a == b || text[b-1] == '\n'
}

// lineEnd returns the offset just past the newline that ends the line containing b, or len(text).
func lineEnd(text string, b int) int {
	if i := strings.IndexByte(text[b:], '\n'); i >= 0 {
		return b + i + 1
	}
	return len(text)
}

func endLine(t *lineindex.Table, a, b int) int {
	if a == b {
		return t.Position(a).Line
	}
	p := t.Position(b)
	if p.Col == 0 {
		return p.Line
	}
	return p.Line + 1
}
