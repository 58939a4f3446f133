package render

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// widther measures text in terminal columns, one grapheme cluster at a time.
type widther struct {
	cond *runewidth.Condition
}

func newWidther(eastAsian bool) widther {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = eastAsian
	cond.StrictEmojiNeutral = !eastAsian
	return widther{cond: cond}
}

func (w widther) width(s string) int {
	return w.cond.StringWidth(s)
}

// fit lays text out in exactly cols columns: graphemes that would overflow are cut and the rest is padded with spaces. Tabs expand to the next multiple of tab
// (tab <= 0 shows them as one space); other control bytes show as a middle dot and bytes that are not UTF-8 as U+FFFD.
//
// Bytes inside spans are wrapped with on/off, which must be empty or escape sequences.
func (w widther) fit(text string, cols, tab int, spans []span, on, off string) string {
	var b strings.Builder
	col := 0
	emphasized := false

	iter := graphemes.FromString(text)
	for iter.Next() {
		shown, gw := w.grapheme(iter.Value(), col, tab)
		if col+gw > cols {
			break
		}

		if in := inSpans(spans, iter.Start()); in != emphasized {
			if in {
				b.WriteString(on)
			} else {
				b.WriteString(off)
			}
			emphasized = in
		}
		b.WriteString(shown)
		col += gw
	}
	if emphasized {
		b.WriteString(off)
	}

	if col < cols {
		b.WriteString(strings.Repeat(" ", cols-col))
	}
	return b.String()
}

func (w widther) grapheme(g string, col, tab int) (string, int) {
	switch {
	case g == "\t":
		if tab <= 0 {
			return " ", 1
		}
		n := tab - col%tab
		return strings.Repeat(" ", n), n
	case g == "\r":
		return "␍", 1
	case len(g) == 1 && (g[0] < 0x20 || g[0] == 0x7f):
		return "·", 1
	case !utf8.ValidString(g):
		return "\uFFFD", 1
	}
	return g, w.width(g)
}

func inSpans(spans []span, offset int) bool {
	for _, s := range spans {
		if offset >= s.start && offset < s.end {
			return true
		}
	}
	return false
}
