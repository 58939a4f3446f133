package diffengine

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate checks ops against the Engine contract for base and revision. It returns nil if the contract holds, otherwise an error listing every violation found.
func Validate(ops []RawOp, base, revision string) error {
	var result *multierror.Error
	var baseBuf, revBuf strings.Builder

	for i, op := range ops {
		switch op.Op {
		case OpEqual:
			baseBuf.WriteString(op.Text)
			revBuf.WriteString(op.Text)
		case OpDelete:
			baseBuf.WriteString(op.Text)
		case OpInsert:
			revBuf.WriteString(op.Text)
		default:
			result = multierror.Append(result, fmt.Errorf("op[%d]: unknown op code %d", i, int(op.Op)))
		}
	}

	if got := baseBuf.String(); got != base {
		result = multierror.Append(result, fmt.Errorf("ops do not reconstruct base: first mismatch at offset %d (got %d bytes, want %d)", firstMismatch(got, base), len(got), len(base)))
	}
	if got := revBuf.String(); got != revision {
		result = multierror.Append(result, fmt.Errorf("ops do not reconstruct revision: first mismatch at offset %d (got %d bytes, want %d)", firstMismatch(got, revision), len(got), len(revision)))
	}

	return result.ErrorOrNil()
}

func firstMismatch(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// NormalizeEOL converts "\r\n" line endings to "\n". Buffers should be normalized once when they are loaded, before they are diffed: offsets in hunks always refer
// to the text that was diffed.
func NormalizeEOL(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// MostlyCRLF reports whether most of s's line endings are "\r\n". Ties count as CRLF; text without line endings is not CRLF.
func MostlyCRLF(s string) bool {
	crlf := strings.Count(s, "\r\n")
	return crlf > 0 && crlf >= strings.Count(s, "\n")-crlf
}

// RestoreCRLF converts every "\n" in s to "\r\n". It undoes NormalizeEOL for text whose line endings were all CRLF.
func RestoreCRLF(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}
