package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/codalotl/splitdiff/internal/config"
	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/codalotl/splitdiff/internal/render"
	"github.com/codalotl/splitdiff/internal/splitdiff"
	"github.com/codalotl/splitdiff/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var runTUI = tui.Run

// runEnv is the I/O and logging shared by all commands of one Run.
type runEnv struct {
	in     io.Reader
	out    io.Writer
	err    io.Writer
	logger *slog.Logger
}

func newRootCommand(env *runEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "splitdiff",
		Short: "Side-by-side diff and merge of two files",
		Long: `splitdiff compares two files line by line and shows them side by side. Differences are grouped into hunks that can be
copied from one side to the other, either one at a time from the command line or interactively with 'splitdiff tui'.

Settings come from built-in defaults, then the config file, then SPLITDIFF_* environment variables, then flags.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	addSettingsFlags(root.PersistentFlags())

	root.AddCommand(
		newShowCommand(env),
		newHunksCommand(env),
		newMergeCommand(env),
		newTUICommand(env),
	)
	return root
}

// addSettingsFlags registers one flag per config key. Their defaults only document the built-in values: config.Load ignores flags the user did not set.
func addSettingsFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.String("config", "", "config file (default $XDG_CONFIG_HOME/splitdiff/config.yaml)")
	fs.String("granularity", d.Granularity, "hunk grouping: broad or specific")
	fs.Int("max-hunks", d.MaxHunks, "suppress the diff when it has more hunks than this")
	fs.Bool("no-char-diffs", d.NoCharDiffs, "do not highlight changed characters within lines")
	fs.Bool("keep-crlf", d.KeepCRLF, "compare CRLF line endings as-is instead of normalizing them to LF")
	fs.String("color", d.Color, "color output: auto, always or never")
	fs.Int("width", d.Width, "output width in columns (0: terminal width)")
	fs.Int("context", d.Context, "unchanged lines shown around each hunk (negative: all)")
	fs.Duration("diff-timeout", d.DiffTimeout, "time budget for the character diff")
	fs.Bool("east-asian-width", d.EastAsianWidth, "treat ambiguous-width characters as two columns wide")
}

// twoFiles accepts exactly LEFT and RIGHT.
func twoFiles(_ *cobra.Command, args []string) error {
	if len(args) != 2 {
		return newUsageError("want 2 files (LEFT RIGHT), got %d", len(args))
	}
	if args[0] == stdinPath && args[1] == stdinPath {
		return newUsageError("only one of LEFT and RIGHT can be read from stdin")
	}
	return nil
}

func newShowCommand(env *runEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show LEFT RIGHT",
		Short: "Print LEFT and RIGHT side by side",
		Long:  "Print LEFT and RIGHT side by side, followed by a one-line summary. Either file may be - for stdin.",
		Args:  twoFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open(cmd, args)
			if err != nil {
				return err
			}
			if err := s.diff(env.logger); err != nil {
				return err
			}

			opts := env.renderOptions(s.settings)
			opts.LeftTitle = s.leftPath
			opts.RightTitle = s.rightPath

			out := cmd.OutOrStdout()
			fmt.Fprint(out, render.SideBySide(s.res, opts).String())
			fmt.Fprintln(out, summary(s.res, s.settings.MaxHunks))
			return nil
		},
	}
}

// Hunk dump formats.
const (
	formatText    = "text"
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatUnified = "unified"
)

func newHunksCommand(env *runEnv) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "hunks LEFT RIGHT",
		Short: "List the hunks between LEFT and RIGHT",
		Long: `List the hunks between LEFT and RIGHT. Line numbers are 0-based and ranges are half-open; offsets are byte offsets.
With --format json or yaml the full result is written, including intra-line character ranges. --format unified writes a unified
diff from RIGHT to LEFT.`,
		Args: twoFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatText, formatJSON, formatYAML, formatUnified:
			default:
				return newUsageError("invalid --format %q: want text, json, yaml or unified", format)
			}

			s, err := env.open(cmd, args)
			if err != nil {
				return err
			}
			if err := s.diff(env.logger); err != nil {
				return err
			}
			if format == formatUnified {
				opts := env.renderOptions(s.settings)
				opts.LeftTitle = s.leftPath
				opts.RightTitle = s.rightPath
				fmt.Fprint(cmd.OutOrStdout(), render.Unified(s.res, opts))
				return nil
			}
			return writeHunks(cmd.OutOrStdout(), format, s.res, s.settings.MaxHunks)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml or unified")
	return cmd
}

func writeHunks(w io.Writer, format string, res splitdiff.Result, maxHunks int) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return health.Wrap("encode json", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return health.Wrap("encode yaml", err)
		}
		if err := enc.Close(); err != nil {
			return health.Wrap("encode yaml", err)
		}
	default:
		for i, h := range res.Hunks {
			fmt.Fprintf(w, "%d\t%s\n", i+1, h)
		}
		fmt.Fprintln(w, summary(res, maxHunks))
	}
	return nil
}

func newMergeCommand(env *runEnv) *cobra.Command {
	var (
		hunk      int
		direction string
		write     bool
	)
	cmd := &cobra.Command{
		Use:   "merge LEFT RIGHT --hunk N --direction ltr|rtl",
		Short: "Copy one hunk from one side to the other",
		Long: `Copy hunk N (1-based, as listed by 'splitdiff hunks') from one side to the other. ltr copies LEFT's content over RIGHT;
rtl copies RIGHT's content over LEFT.

The updated target file is printed to stdout, or written back in place with --write.`,
		Args: twoFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := splitdiff.ParseDirection(strings.ToLower(direction))
			if err != nil {
				return &usageError{err: err}
			}

			s, err := env.open(cmd, args)
			if err != nil {
				return err
			}
			if err := s.diff(env.logger); err != nil {
				return err
			}

			switch {
			case s.res.Suppressed:
				return health.NewHumanErr(fmt.Sprintf("diff suppressed (%s); raise --max-hunks to merge", summary(s.res, s.settings.MaxHunks)), "merge suppressed", "total", s.res.Total)
			case len(s.res.Hunks) == 0:
				return health.NewHumanErr("no differences; nothing to merge", "merge without hunks")
			case hunk < 1 || hunk > len(s.res.Hunks):
				return health.NewHumanErr(fmt.Sprintf("hunk %d out of range: want 1..%d", hunk, len(s.res.Hunks)), "merge hunk out of range", "hunk", hunk, "count", len(s.res.Hunks))
			case !s.res.Hunks[hunk-1].CanMerge(dir):
				return health.NewHumanErr(fmt.Sprintf("hunk %d has no %s lines to copy", hunk, dir.Source()), "merge empty source", "hunk", hunk, "dir", dir.String())
			}

			left, right, err := s.res.Merge(hunk-1, dir, s.left, s.right)
			if err != nil {
				return err
			}

			target := dir.Target()
			text, path := config.Restore(left, s.leftCRLF), s.leftPath
			if target == splitdiff.SideRight {
				text, path = config.Restore(right, s.rightCRLF), s.rightPath
			}

			if !write {
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			if path == stdinPath {
				return health.NewHumanErr("cannot --write the "+target.String()+" side: it was read from stdin", "merge write stdin", "side", target.String())
			}
			if err := writeBuffer(path, text); err != nil {
				return err
			}
			env.logger.Info("merged hunk", "hunk", hunk, "dir", dir.String(), "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVarP(&hunk, "hunk", "n", 0, "hunk to copy (1-based)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "ltr (left to right) or rtl (right to left)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the target file in place instead of printing it")
	_ = cmd.MarkFlagRequired("hunk")
	_ = cmd.MarkFlagRequired("direction")
	return cmd
}

func newTUICommand(env *runEnv) *cobra.Command {
	var leftReadOnly, rightReadOnly bool
	cmd := &cobra.Command{
		Use:   "tui LEFT RIGHT",
		Short: "Browse and merge hunks interactively",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := twoFiles(cmd, args); err != nil {
				return err
			}
			if args[0] == stdinPath || args[1] == stdinPath {
				return newUsageError("tui reads keys from the terminal; LEFT and RIGHT must be files")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open(cmd, args)
			if err != nil {
				return err
			}
			return runTUI(s.left, s.right, tui.Options{
				LeftPath:      s.leftPath,
				RightPath:     s.rightPath,
				LeftReadOnly:  leftReadOnly,
				RightReadOnly: rightReadOnly,
				LeftCRLF:      s.leftCRLF,
				RightCRLF:     s.rightCRLF,
				Diff:          s.settings.DiffConfig(env.logger),
				Render:        env.renderOptions(s.settings),
				Logger:        env.logger,
				In:            env.in,
				Out:           env.out,
			})
		},
	}
	cmd.Flags().BoolVar(&leftReadOnly, "left-read-only", false, "never copy into LEFT")
	cmd.Flags().BoolVar(&rightReadOnly, "right-read-only", false, "never copy into RIGHT")
	return cmd
}
