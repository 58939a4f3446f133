package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Kind classifies a HealthErr by who is at fault and whether it is recoverable.
type Kind int

const (
	// KindUnspecified is the Kind of errors created without one.
	KindUnspecified Kind = iota

	// KindContract marks a violated API contract (a programming error upstream, such as an edit script that does not cover its inputs). Not recoverable at runtime.
	KindContract

	// KindStale marks an operation against state that has been superseded (ex: applying a hunk computed for buffers that have since changed).
	KindStale

	// KindInput marks a user-recoverable input problem (bad flag, unreadable file).
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindStale:
		return "stale"
	case KindInput:
		return "input"
	}
	return "unspecified"
}

type HealthErr struct {
	Message string
	Kind    Kind
	wrapped error
	attrs   []any
}

// Error satisfies the error interface. All aspects will be serialized to the string: msg, wrapped error, and all attrs.
func (e *HealthErr) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.attrs) > 0 {
		b.WriteString("[")
		writeAttrs(&b, e.attrs)
		b.WriteString("]")
	}

	if e.wrapped != nil {
		b.WriteString(" via ")
		b.WriteString(e.wrapped.Error())
	}

	return b.String()
}

func (e *HealthErr) Unwrap() error {
	return e.wrapped
}

// NewKindErr returns a new error (unlogged) of the given Kind. args is in the same format as slog's args to Info: they can be key/values, or slog.Attrs.
// NOTE: to wrap an error, use Wrap or WrapKind.
func NewKindErr(kind Kind, msg string, args ...any) error {
	return &HealthErr{Message: msg, Kind: kind, attrs: args}
}

// Wrap returns a new error that wraps `wrapped`. The new error inherits the Kind of the innermost HealthErr in wrapped's chain, if any.
func Wrap(msg string, wrapped error, args ...any) error {
	if wrapped == nil {
		wrapped = errors.New("nil wrapped error. WARNING: you should not call Wrap with a nil error")
	}
	return &HealthErr{Message: msg, Kind: KindOf(wrapped), wrapped: wrapped, attrs: args}
}

// WrapKind is Wrap with an explicit Kind.
func WrapKind(kind Kind, msg string, wrapped error, args ...any) error {
	err := Wrap(msg, wrapped, args...).(*HealthErr)
	err.Kind = kind
	return err
}

// KindOf returns the Kind of the first HealthErr (or HumanErr) in err's chain with a specified Kind. It returns KindUnspecified otherwise.
func KindOf(err error) Kind {
	for err != nil {
		switch e := err.(type) {
		case *HealthErr:
			if e.Kind != KindUnspecified {
				return e.Kind
			}
		case *HumanErr:
			if e.Kind != KindUnspecified {
				return e.Kind
			}
		}
		err = errors.Unwrap(err)
	}
	return KindUnspecified
}

// IsContract reports whether err is (or wraps) a contract violation.
func IsContract(err error) bool {
	return KindOf(err) == KindContract
}

// LogErr logs err to logger (if it's not nil) and returns the error. It enables the pattern of logging and returning an error in one line:
//
//	return health.LogErr(logger, health.NewKindErr(health.KindContract, "ops overlap", "op", i))
//
// When err is a health error it gets special treatment: its attrs are logged first (then args), the wrapped error is logged with a "via" kv, and a specified Kind
// is logged with a "kind" kv.
func LogErr(logger *slog.Logger, err error, args ...any) error {
	if logger == nil || err == nil {
		return err
	}

	// If human error, log the underlying log-optimized version of it:
	humanErr, isHumanErr := err.(*HumanErr)
	if isHumanErr {
		err = &humanErr.HealthErr
	}

	h, isHealthErr := err.(*HealthErr)
	if !isHealthErr {
		logger.Error(err.Error(), args...)
		return restore(err, humanErr)
	}

	allArgs := make([]any, 0, len(h.attrs)+len(args)+2)
	allArgs = append(allArgs, h.attrs...)
	if h.Kind != KindUnspecified {
		allArgs = append(allArgs, slog.String("kind", h.Kind.String()))
	}
	if h.wrapped != nil {
		allArgs = append(allArgs, slog.String("via", h.wrapped.Error()))
	}
	allArgs = append(allArgs, args...)

	logger.Error(h.Message, allArgs...)
	return restore(err, humanErr)
}

func restore(err error, human *HumanErr) error {
	if human != nil {
		return human
	}
	return err
}

// writeAttrs writes attrs (in the protocol of slog attrs to .Log) to b. Attributes will be written in key=value format, as per the Text handler. Ex: `num=3 str="hi"`.
func writeAttrs(b *strings.Builder, attrs []any) {
	if len(attrs) == 0 {
		return
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey {
				return slog.Attr{}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(&noNewlineWriter{w: b}, opts)
	slog.New(handler).Log(context.Background(), slog.LevelDebug, "", attrs...)
}

// noNewlineWriter strips the single trailing newline slog.TextHandler writes.
type noNewlineWriter struct {
	w io.Writer
}

func (n *noNewlineWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && p[len(p)-1] == '\n' {
		written, err := n.w.Write(p[:len(p)-1])
		if err == nil {
			return len(p), nil
		}
		return written, err
	}
	return n.w.Write(p)
}
