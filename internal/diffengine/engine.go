// Package diffengine defines the character-diff contract consumed by splitdiff, and provides the default implementation on top of diff-match-patch.
//
// Contract: Diff(base, revision) returns ordered ops covering every byte of both strings exactly once. Concatenating the text of all non-Delete ops reconstructs
// revision; concatenating the text of all non-Insert ops reconstructs base. Empty-text ops are allowed and meaningless. Validate checks the contract.
package diffengine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies a span of the two texts. The values match diff-match-patch's operation codes.
type Op int

const (
	OpDelete Op = -1 // text present only in base
	OpEqual  Op = 0  // text present in both
	OpInsert Op = 1  // text present only in revision
)

func (o Op) String() string {
	switch o {
	case OpDelete:
		return "delete"
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	}
	return "unknown"
}

// RawOp is one classified span.
type RawOp struct {
	Op   Op
	Text string
}

// Engine computes an edit script from base to revision.
type Engine interface {
	Diff(base, revision string) []RawOp
}

// DefaultTimeout is the time budget DMP gives diff-match-patch when Options.Timeout is zero.
const DefaultTimeout = time.Second

// Options configure a DMP engine.
type Options struct {
	// Timeout bounds the time diff-match-patch spends on one diff; on expiry it returns a valid but coarser diff. Zero means DefaultTimeout; negative means no limit.
	Timeout time.Duration

	// SkipSemanticCleanup disables the semantic cleanup pass. Without it, trivial adjacent edits are not coalesced and hunks fragment badly; only tests should set it.
	SkipSemanticCleanup bool
}

// DMP is an Engine backed by github.com/sergi/go-diff/diffmatchpatch.
type DMP struct {
	opts Options
}

// NewDMP returns a DMP engine. A nil opts uses defaults.
func NewDMP(opts *Options) *DMP {
	d := &DMP{}
	if opts != nil {
		d.opts = *opts
	}
	return d
}

// Diff implements Engine.
func (d *DMP) Diff(base, revision string) []RawOp {
	dmp := diffmatchpatch.New()
	switch {
	case d.opts.Timeout == 0:
		dmp.DiffTimeout = DefaultTimeout
	case d.opts.Timeout < 0:
		dmp.DiffTimeout = 0
	default:
		dmp.DiffTimeout = d.opts.Timeout
	}

	if !utf8.ValidString(base) || !utf8.ValidString(revision) {
		return d.diffBytes(dmp, base, revision)
	}

	diffs := dmp.DiffMain(base, revision, false)
	if !d.opts.SkipSemanticCleanup {
		diffs = dmp.DiffCleanupSemantic(diffs)
	}

	ops := make([]RawOp, 0, len(diffs))
	for _, df := range diffs {
		ops = append(ops, RawOp{Op: fromDMP(df.Type), Text: df.Text})
	}
	return ops
}

// invalidByteBase + b is the private-use rune standing in for a byte b that is not part of valid UTF-8.
const invalidByteBase = 0xF700

// diffBytes diffs texts that are not valid UTF-8. diff-match-patch works on runes and would replace invalid bytes with U+FFFD, so every invalid byte is
// diffed as its own private-use rune and the ops are rebuilt from the original bytes.
func (d *DMP) diffBytes(dmp *diffmatchpatch.DiffMatchPatch, base, revision string) []RawOp {
	baseRunes, baseSrc := byteRunes(base)
	revRunes, revSrc := byteRunes(revision)

	diffs := dmp.DiffMainRunes(baseRunes, revRunes, false)
	if !d.opts.SkipSemanticCleanup {
		diffs = dmp.DiffCleanupSemantic(diffs)
	}

	var ops []RawOp
	emit := func(op Op, src []string) {
		text := strings.Join(src, "")
		if n := len(ops); n > 0 && ops[n-1].Op == op {
			ops[n-1].Text += text
			return
		}
		ops = append(ops, RawOp{Op: op, Text: text})
	}

	bi, ri := 0, 0
	for _, df := range diffs {
		n := utf8.RuneCountInString(df.Text)
		switch fromDMP(df.Type) {
		case OpDelete:
			emit(OpDelete, baseSrc[bi:bi+n])
			bi += n
		case OpInsert:
			emit(OpInsert, revSrc[ri:ri+n])
			ri += n
		default:
			// A private-use rune in valid text compares equal to the invalid byte it stands for; such pairs become a delete and an insert.
			for k := 0; k < n; {
				j := k
				for j < n && baseSrc[bi+j] == revSrc[ri+j] {
					j++
				}
				if j > k {
					emit(OpEqual, baseSrc[bi+k:bi+j])
					k = j
					continue
				}
				emit(OpDelete, baseSrc[bi+k:bi+k+1])
				emit(OpInsert, revSrc[ri+k:ri+k+1])
				k++
			}
			bi += n
			ri += n
		}
	}
	return ops
}

// byteRunes decodes s, mapping each invalid byte to invalidByteBase + byte. src[i] is the slice of s that runes[i] came from.
func byteRunes(s string) (runes []rune, src []string) {
	runes = make([]rune, 0, len(s))
	src = make([]string, 0, len(s))
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && n == 1 {
			r = invalidByteBase + rune(s[i])
		}
		runes = append(runes, r)
		src = append(src, s[i:i+n])
		i += n
	}
	return runes, src
}

func fromDMP(t diffmatchpatch.Operation) Op {
	switch t {
	case diffmatchpatch.DiffDelete:
		return OpDelete
	case diffmatchpatch.DiffInsert:
		return OpInsert
	default:
		return OpEqual
	}
}

// Func adapts a function to the Engine interface.
type Func func(base, revision string) []RawOp

// Diff implements Engine.
func (f Func) Diff(base, revision string) []RawOp {
	return f(base, revision)
}

// Static is an Engine that always returns Ops, regardless of its inputs. It is useful to feed a hand-written edit script through the pipeline.
type Static struct {
	Ops []RawOp
}

// Diff implements Engine.
func (s Static) Diff(string, string) []RawOp {
	out := make([]RawOp, len(s.Ops))
	copy(out, s.Ops)
	return out
}
