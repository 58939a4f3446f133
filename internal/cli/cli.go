package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/codalotl/splitdiff/internal/simplelogger"
)

// Version is the splitdiff version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.3.0"

// In/Out/Err override standard I/O. If nil, defaults are used. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Logger receives structured logs. nil means simplelogger.New().
	Logger *slog.Logger
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code (0, 1, or 2) and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound (flags are correct, etc).
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//
// Note that in cases of errors, Run has already displayed an error message to opts.Err || Stderr. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	env := &runEnv{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.err = opts.Err
		}
		env.logger = opts.Logger
	}
	if env.logger == nil {
		env.logger = simplelogger.New()
	}

	root := newRootCommand(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.err)

	err := root.Execute()
	if err == nil {
		return 0, nil
	}

	code := 1
	var ue *usageError
	if errors.As(err, &ue) || isCobraUsageError(err) {
		code = 2
	}

	health.LogErr(env.logger, err, "exit_code", code)
	fmt.Fprintf(env.err, "splitdiff: %s\n", err.Error())
	if code == 2 {
		fmt.Fprintln(env.err, "Run 'splitdiff --help' for usage.")
	}
	return code, err
}

// usageError marks errors caused by malformed arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func newUsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// isCobraUsageError recognizes the errors cobra returns without going through the flag error hook (unknown commands, missing required flags).
func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "required flag"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
