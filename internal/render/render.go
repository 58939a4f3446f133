// Package render draws a splitdiff.Result as a side-by-side terminal view: LEFT on the left, RIGHT on the right, a connector gutter between them carrying copy
// arrows, and intra-line emphasis of changed characters.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/splitdiff"
	"github.com/dustin/go-humanize"
)

// Colors (ANSI) for side-by-side output.
const (
	reset      = "\x1b[0m"
	blackFG    = "\x1b[30m"
	dim        = "\x1b[2m"
	bold       = "\x1b[1m"
	reverse    = "\x1b[7m"
	cyanBold   = "\x1b[1;36m"
	yellowBold = "\x1b[1;33m"
	pinkLine   = "\x1b[48;5;224m" // light pink for changed RIGHT lines
	pinkSpan   = "\x1b[48;5;217m" // slightly darker pink for changed RIGHT spans
	greenLine  = "\x1b[48;5;194m" // light green for changed LEFT lines
	greenSpan  = "\x1b[48;5;114m" // slightly darker green for changed LEFT spans
	grayFill   = "\x1b[48;5;254m" // rows a side has no line for
)

const gutterWidth = 3

// Options control SideBySide. Use DefaultOptions as a starting point.
type Options struct {
	Width   int  // total columns
	Color   bool // emit ANSI escape sequences
	Context int  // unchanged lines kept around each hunk; runs longer than that are folded. Negative shows everything.

	LeftTitle  string
	RightTitle string

	// Copy arrows are only drawn toward an editable side.
	LeftEditable  bool
	RightEditable bool

	Selected int // index of the hunk to emphasize; negative for none

	TabWidth       int
	EastAsianWidth bool // treat ambiguous-width runes as 2 columns
}

// DefaultOptions returns 120 columns, no color, 3 lines of context, both sides editable, nothing selected.
func DefaultOptions() Options {
	return Options{
		Width:         120,
		Context:       3,
		LeftEditable:  true,
		RightEditable: true,
		Selected:      -1,
		TabWidth:      4,
	}
}

// View is a rendered Result.
type View struct {
	Lines []string // one terminal row each

	// HunkRows[i] is the index in Lines of the first row of hunk i.
	HunkRows []int
}

func (v View) String() string {
	if len(v.Lines) == 0 {
		return ""
	}
	return strings.Join(v.Lines, "\n") + "\n"
}

// SideBySide renders res.
func SideBySide(res splitdiff.Result, opts Options) View {
	if opts.Width < 2*minPane+gutterWidth {
		opts.Width = 2*minPane + gutterWidth
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}

	p := &painter{
		opts:   opts,
		res:    res,
		tables: [2]*lineindex.Table{lineindex.Build(res.Left), lineindex.Build(res.Right)},
		texts:  [2]string{res.Left, res.Right},
		widths: newWidther(opts.EastAsianWidth),
	}
	p.pane = (opts.Width - gutterWidth) / 2
	p.numW = len(strconv.Itoa(max(p.tables[0].LineCount(), p.tables[1].LineCount())))
	p.textW = max(p.pane-p.numW-2, 1)

	rows := layout(res.Hunks, p.tables[0].LineCount(), p.tables[1].LineCount())
	if opts.Context >= 0 {
		rows = fold(rows, opts.Context)
	}

	var v View
	v.HunkRows = make([]int, len(res.Hunks))
	for i := range v.HunkRows {
		v.HunkRows[i] = -1
	}

	if res.Suppressed {
		v.Lines = append(v.Lines, p.banner(fmt.Sprintf("diff suppressed: %s hunks exceed the limit", humanize.Comma(int64(res.Total)))))
	}
	if opts.LeftTitle != "" || opts.RightTitle != "" {
		v.Lines = append(v.Lines, p.titles())
	}
	for _, rw := range rows {
		if rw.kind == rowHunk && rw.first {
			v.HunkRows[rw.hunk] = len(v.Lines)
		}
		v.Lines = append(v.Lines, p.row(rw))
	}
	return v
}

const minPane = 12

type rowKind int

const (
	rowEqual rowKind = iota
	rowHunk
	rowFold
)

// row is one output row. left and right are line numbers, or -1 when that side shows filler.
type row struct {
	kind   rowKind
	left   int
	right  int
	hunk   int
	first  bool // first row of its hunk
	folded int  // rowFold: number of hidden rows
}

// layout pairs lines of the two buffers into rows. Lines between hunks are paired in order; each hunk gets as many rows as its taller side (at least one, so a
// hunk whose lines are all past the end is still visible).
func layout(hunks []splitdiff.Hunk, leftLines, rightLines int) []row {
	var rows []row
	l, r := 0, 0

	pair := func(kind rowKind, hunk, toL, toR int) {
		first := true
		for l < toL || r < toR || (kind == rowHunk && first) {
			rw := row{kind: kind, left: -1, right: -1, hunk: hunk, first: first}
			if l < toL {
				rw.left = l
				l++
			}
			if r < toR {
				rw.right = r
				r++
			}
			rows = append(rows, rw)
			first = false
		}
	}

	for i, h := range hunks {
		pair(rowEqual, -1, min(h.LeftStartLine, leftLines), min(h.RightStartLine, rightLines))
		pair(rowHunk, i, min(h.LeftEndLine, leftLines), min(h.RightEndLine, rightLines))
	}
	pair(rowEqual, -1, leftLines, rightLines)
	return rows
}

// fold replaces runs of equal rows longer than needed for ctx rows of context on each side with one fold row.
func fold(rows []row, ctx int) []row {
	var out []row
	for i := 0; i < len(rows); {
		if rows[i].kind != rowEqual {
			out = append(out, rows[i])
			i++
			continue
		}
		j := i
		for j < len(rows) && rows[j].kind == rowEqual {
			j++
		}

		head, tail := ctx, ctx
		if i == 0 {
			head = 0
		}
		if j == len(rows) {
			tail = 0
		}
		if j-i > head+tail+1 {
			out = append(out, rows[i:i+head]...)
			out = append(out, row{kind: rowFold, left: -1, right: -1, hunk: -1, folded: j - i - head - tail})
			out = append(out, rows[j-tail:j]...)
		} else {
			out = append(out, rows[i:j]...)
		}
		i = j
	}
	return out
}

type painter struct {
	opts   Options
	res    splitdiff.Result
	tables [2]*lineindex.Table
	texts  [2]string
	widths widther

	pane  int // columns per side
	numW  int // columns for line numbers
	textW int // columns for line text
}

func (p *painter) row(rw row) string {
	if rw.kind == rowFold {
		return p.banner(fmt.Sprintf("⋯ %s unchanged lines ⋯", humanize.Comma(int64(rw.folded))))
	}
	return p.cell(splitdiff.SideLeft, rw.left, rw) + p.gutter(rw) + p.cell(splitdiff.SideRight, rw.right, rw)
}

// banner centers msg across the full width.
func (p *painter) banner(msg string) string {
	w := p.widths.width(msg)
	pad := max((p.opts.Width-w)/2, 0)
	line := strings.Repeat(" ", pad) + p.widths.fit(msg, p.opts.Width-pad, 0, nil, "", "")
	if p.opts.Color {
		return dim + line + reset
	}
	return line
}

func (p *painter) titles() string {
	left := p.widths.fit(p.opts.LeftTitle, p.pane, 0, nil, "", "")
	right := p.widths.fit(p.opts.RightTitle, p.pane, 0, nil, "", "")
	sep := strings.Repeat(" ", gutterWidth)
	if p.opts.Color {
		return bold + left + reset + sep + bold + right + reset
	}
	return left + sep + right
}

func (p *painter) cell(side splitdiff.Side, line int, rw row) string {
	changed := rw.kind == rowHunk
	if line < 0 {
		filler := strings.Repeat(" ", p.pane)
		if changed && p.opts.Color {
			return grayFill + filler + reset
		}
		return filler
	}

	t := p.tables[side]
	start := t.LineStart(line)
	text := p.texts[side][start : start+t.CharsOnLine(line)]
	num := fmt.Sprintf("%*d", p.numW, line+1)

	if !changed {
		body := p.widths.fit(text, p.textW, p.opts.TabWidth, nil, "", "")
		if p.opts.Color {
			return dim + num + reset + "  " + body
		}
		return num + "  " + body
	}

	sign, lineBg, spanBg := "+", greenLine, greenSpan
	if side == splitdiff.SideRight {
		sign, lineBg, spanBg = "-", pinkLine, pinkSpan
	}
	spans := lineSpans(p.res.Hunks[rw.hunk].Chars(side), line, len(text))

	if !p.opts.Color {
		return num + " " + sign + p.widths.fit(text, p.textW, p.opts.TabWidth, nil, "", "")
	}
	on := reset + blackFG + spanBg
	off := reset + blackFG + lineBg
	body := p.widths.fit(text, p.textW, p.opts.TabWidth, spans, on, off)
	return blackFG + lineBg + num + " " + sign + body + reset
}

func (p *painter) gutter(rw row) string {
	if rw.kind != rowHunk {
		if p.opts.Color {
			return dim + " │ " + reset
		}
		return " │ "
	}

	l, mid, r := " ", "┃", " "
	if rw.first {
		h := p.res.Hunks[rw.hunk]
		if p.opts.LeftEditable && h.CanMerge(splitdiff.RightToLeft) {
			l = "<"
		}
		if p.opts.RightEditable && h.CanMerge(splitdiff.LeftToRight) {
			r = ">"
		}
	}

	selected := rw.hunk == p.opts.Selected
	switch {
	case selected && p.opts.Color:
		return reverse + yellowBold + l + mid + r + reset
	case selected:
		return l + "█" + r
	case p.opts.Color:
		return cyanBold + l + mid + r + reset
	}
	return l + mid + r
}

// span is a half-open byte range on one line.
type span struct {
	start, end int
}

// lineSpans returns the parts of line (lineLen bytes long) covered by chars.
func lineSpans(chars []splitdiff.CharRange, line, lineLen int) []span {
	var out []span
	for _, cr := range chars {
		if line < cr.LineStart || line >= cr.LineEnd {
			continue
		}
		s, e := 0, lineLen
		if line == cr.LineStart {
			s = min(cr.Start, lineLen)
		}
		if line == cr.LineEnd-1 {
			e = min(cr.End, lineLen)
		}
		if e > s {
			out = append(out, span{start: s, end: e})
		}
	}
	return out
}
