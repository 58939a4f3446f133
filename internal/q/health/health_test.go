package health

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthErr_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "message only",
			err:  NewKindErr(KindContract, "edit script does not cover both buffers"),
			want: "edit script does not cover both buffers",
		},
		{
			name: "attrs",
			err:  NewKindErr(KindContract, "unknown op code", "op", 2, "code", 7),
			want: "unknown op code[op=2 code=7]",
		},
		{
			name: "slog attrs and quoting",
			err:  NewKindErr(KindInput, "invalid granularity", slog.String("granularity", "very broad")),
			want: `invalid granularity[granularity="very broad"]`,
		},
		{
			name: "wrapped",
			err:  Wrap("write buffer", errors.New("permission denied"), "path", "right.txt"),
			want: "write buffer[path=right.txt] via permission denied",
		},
		{
			name: "wrapped twice",
			err:  Wrap("run tui", Wrap("recompute", NewKindErr(KindContract, "bad ops", "op", 1))),
			want: "run tui via recompute via bad ops[op=1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap_Chain(t *testing.T) {
	sentinel := errors.New("hunks are stale")
	err := WrapKind(KindStale, "merge hunk", sentinel, "hunk", 0)
	assert.ErrorIs(t, Wrap("copy", err), sentinel)

	var h *HealthErr
	require.ErrorAs(t, Wrap("copy", err), &h)
	assert.Equal(t, "copy", h.Message)

	assert.Contains(t, Wrap("nothing", nil).Error(), "nil wrapped error")
}

func TestKind(t *testing.T) {
	contract := NewKindErr(KindContract, "edit script does not cover buffer", "side", "left")
	assert.True(t, IsContract(contract))

	// Wrapping keeps the innermost specified Kind.
	wrapped := Wrap("diff pass failed", contract)
	assert.True(t, IsContract(wrapped))
	assert.Equal(t, KindContract, wrapped.(*HealthErr).Kind)

	// Kind is found through foreign errors too.
	mixed := Wrap("outer", &chainErr{msg: "middle", err: contract})
	assert.Equal(t, KindContract, KindOf(mixed))

	stale := WrapKind(KindStale, "hunk is stale", errors.New("buffers changed"))
	assert.Equal(t, KindStale, KindOf(stale))
	assert.False(t, IsContract(stale))

	assert.Equal(t, KindUnspecified, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnspecified, KindOf(nil))

	for k, want := range map[Kind]string{KindUnspecified: "unspecified", KindContract: "contract", KindStale: "stale", KindInput: "input"} {
		assert.Equal(t, want, k.String())
	}
}

func TestLogErr(t *testing.T) {
	plain := errors.New("disk full")
	contract := NewKindErr(KindContract, "bad ops", "op", 3)

	tests := []struct {
		name string
		err  error
		args []any
		want string
	}{
		{name: "plain error", err: plain, args: []any{"path", "a.txt"}, want: `level=ERROR msg="disk full" path=a.txt`},
		{name: "kind and attrs", err: contract, want: `level=ERROR msg="bad ops" op=3 kind=contract`},
		{name: "wrapped", err: Wrap("write buffer", plain, "path", "a.txt"), args: []any{"side", "left"}, want: `level=ERROR msg="write buffer" path=a.txt via="disk full" side=left`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}))

			got := LogErr(logger, tt.err, tt.args...)
			assert.Same(t, tt.err, got)
			assert.Equal(t, tt.want, strings.TrimSpace(buf.String()))
		})
	}

	assert.Same(t, plain, LogErr(nil, plain))
	assert.NoError(t, LogErr(slog.Default(), nil))
}

func TestCtx(t *testing.T) {
	var buf strings.Builder
	c := NewCtx(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	c.Debug("diff pass", "hunks", 2)
	c.Warn("too many hunks", "hunks", 9)
	c.Log("wrote buffers")
	out := buf.String()
	assert.Contains(t, out, `level=DEBUG msg="diff pass" hunks=2`)
	assert.Contains(t, out, `level=WARN msg="too many hunks" hunks=9`)
	assert.Contains(t, out, `level=INFO msg="wrote buffers"`)

	// A zero Ctx logs nothing and still returns errors.
	var zero Ctx
	zero.Warn("ignored")
	err := NewKindErr(KindInput, "bad flag")
	assert.Same(t, err, zero.LogErr(err))
}

type chainErr struct {
	msg string
	err error
}

func (e *chainErr) Error() string { return e.msg }

func (e *chainErr) Unwrap() error { return e.err }
