package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/codalotl/splitdiff/internal/config"
	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/codalotl/splitdiff/internal/render"
	"github.com/codalotl/splitdiff/internal/splitdiff"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdinPath in place of a file name reads that buffer from stdin.
const stdinPath = "-"

const defaultWidth = 120

// session is one command's settings and buffers.
type session struct {
	settings config.Settings

	leftPath, rightPath string
	left, right         string

	// leftCRLF and rightCRLF are set when the buffer was loaded with CRLF line endings that Prepare normalized.
	leftCRLF, rightCRLF bool

	res splitdiff.Result
}

// open loads settings from every source and reads the two buffers named by args.
func (env *runEnv) open(cmd *cobra.Command, args []string) (*session, error) {
	file, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(config.LoadOptions{File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	s := &session{settings: settings, leftPath: args[0], rightPath: args[1]}
	if s.left, err = readBuffer(s.leftPath, env.in); err != nil {
		return nil, err
	}
	if s.right, err = readBuffer(s.rightPath, env.in); err != nil {
		return nil, err
	}
	s.left, s.leftCRLF = settings.Prepare(s.left)
	s.right, s.rightCRLF = settings.Prepare(s.right)

	env.logger.Debug("opened buffers", "left", s.leftPath, "right", s.rightPath, "left_bytes", len(s.left), "right_bytes", len(s.right), "config", settings.File)
	return s, nil
}

// diff runs one pass over the session's buffers.
func (s *session) diff(logger *slog.Logger) error {
	d, err := splitdiff.New(s.settings.DiffConfig(logger))
	if err != nil {
		return err
	}
	s.res, err = d.Diff(s.left, s.right)
	return err
}

func readBuffer(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == stdinPath {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", health.NewHumanErr("could not read "+path+": "+err.Error(), "read buffer", "path", path, "err", err)
	}
	return string(b), nil
}

// writeBuffer replaces path's contents, keeping its permissions.
func writeBuffer(path, text string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		return health.NewHumanErr("could not write "+path+": "+err.Error(), "write buffer", "path", path, "err", err)
	}
	return nil
}

// renderOptions derives render options from settings and the output terminal, if any.
func (env *runEnv) renderOptions(s config.Settings) render.Options {
	isTerm, termWidth := terminal(env.out)

	opts := render.DefaultOptions()
	opts.Context = s.Context
	opts.EastAsianWidth = s.EastAsianWidth

	switch {
	case s.Width > 0:
		opts.Width = s.Width
	case termWidth > 0:
		opts.Width = termWidth
	default:
		opts.Width = defaultWidth
	}

	switch s.Color {
	case config.ColorAlways:
		opts.Color = true
	case config.ColorNever:
		opts.Color = false
	default:
		opts.Color = isTerm && os.Getenv("NO_COLOR") == ""
	}
	return opts
}

// terminal reports whether w is a terminal and, if so, its width (0 if unknown).
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok {
		return false, 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return false, 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return true, 0
	}
	return true, width
}

// summary is the one-line description of res printed after show and hunks.
func summary(res splitdiff.Result, maxHunks int) string {
	if res.Suppressed {
		return fmt.Sprintf("%s %s over the limit of %s", humanize.Comma(int64(res.Total)), english.PluralWord(res.Total, "hunk", ""), humanize.Comma(int64(maxHunks)))
	}
	if len(res.Hunks) == 0 {
		return "no differences"
	}

	var left, right int
	for _, h := range res.Hunks {
		left += h.LeftLines()
		right += h.RightLines()
	}
	return fmt.Sprintf("%s %s (%s): %s left, %s right",
		humanize.Comma(int64(len(res.Hunks))), english.PluralWord(len(res.Hunks), "hunk", ""), res.Granularity,
		english.Plural(left, "line", ""), english.Plural(right, "line", ""))
}
