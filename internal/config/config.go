// Package config loads splitdiff's user settings. Sources, lowest precedence first: built-in defaults, a YAML/JSON/TOML config file, SPLITDIFF_* environment
// variables, and command line flags.
//
// Without an explicit file, $XDG_CONFIG_HOME/splitdiff/config.yaml (or the platform equivalent) is read if it exists.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/codalotl/splitdiff/internal/diffengine"
	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/codalotl/splitdiff/internal/splitdiff"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable: the key max_hunks is read from SPLITDIFF_MAX_HUNKS.
const EnvPrefix = "SPLITDIFF"

// Keys. Flags with these names (dashes instead of underscores) are bound when LoadOptions.Flags has them.
const (
	KeyGranularity    = "granularity"
	KeyMaxHunks       = "max_hunks"
	KeyNoCharDiffs    = "no_char_diffs"
	KeyKeepCRLF       = "keep_crlf"
	KeyContext        = "context"
	KeyColor          = "color"
	KeyWidth          = "width"
	KeyDiffTimeout    = "diff_timeout"
	KeyEastAsianWidth = "east_asian_width"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Settings are the user-facing settings shared by all commands.
type Settings struct {
	Granularity    string        `mapstructure:"granularity" json:"granularity" yaml:"granularity"`
	MaxHunks       int           `mapstructure:"max_hunks" json:"maxHunks" yaml:"max_hunks"`
	NoCharDiffs    bool          `mapstructure:"no_char_diffs" json:"noCharDiffs" yaml:"no_char_diffs"`
	KeepCRLF       bool          `mapstructure:"keep_crlf" json:"keepCRLF" yaml:"keep_crlf"`
	Context        int           `mapstructure:"context" json:"context" yaml:"context"` // unchanged lines shown around hunks; negative shows all
	Color          string        `mapstructure:"color" json:"color" yaml:"color"`
	Width          int           `mapstructure:"width" json:"width" yaml:"width"` // 0: terminal width
	DiffTimeout    time.Duration `mapstructure:"diff_timeout" json:"diffTimeout" yaml:"diff_timeout"`
	EastAsianWidth bool          `mapstructure:"east_asian_width" json:"eastAsianWidth" yaml:"east_asian_width"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" json:"file,omitempty" yaml:"file,omitempty"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Granularity: splitdiff.GranularityBroad.String(),
		MaxHunks:    splitdiff.DefaultMaxHunks,
		Context:     3,
		Color:       ColorAuto,
		DiffTimeout: diffengine.DefaultTimeout,
	}
}

// LoadOptions say where to load settings from.
type LoadOptions struct {
	// File is an explicit config file. It must exist. Empty means the default location, which may be absent.
	File string

	// Flags, if set, override every other source for flags the user actually set.
	Flags *pflag.FlagSet

	// ConfigDir replaces os.UserConfigDir when looking for the default file.
	ConfigDir string
}

// Load reads settings from all sources and validates them.
func Load(opts LoadOptions) (Settings, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyGranularity, d.Granularity)
	v.SetDefault(KeyMaxHunks, d.MaxHunks)
	v.SetDefault(KeyNoCharDiffs, d.NoCharDiffs)
	v.SetDefault(KeyKeepCRLF, d.KeepCRLF)
	v.SetDefault(KeyContext, d.Context)
	v.SetDefault(KeyColor, d.Color)
	v.SetDefault(KeyWidth, d.Width)
	v.SetDefault(KeyDiffTimeout, d.DiffTimeout)
	v.SetDefault(KeyEastAsianWidth, d.EastAsianWidth)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, health.NewHumanErr("could not read config file "+opts.File+": "+err.Error(), "read config", "file", opts.File, "err", err)
		}
	} else if dir := defaultDir(opts.ConfigDir); dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, health.NewHumanErr("invalid config file in "+dir+": "+err.Error(), "read config", "dir", dir, "err", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, key := range []string{KeyGranularity, KeyMaxHunks, KeyNoCharDiffs, KeyKeepCRLF, KeyContext, KeyColor, KeyWidth, KeyDiffTimeout, KeyEastAsianWidth} {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, health.Wrap("bind flag", err, "key", key)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, health.NewHumanErr("invalid configuration: "+err.Error(), "unmarshal config", "err", err)
	}
	s.File = v.ConfigFileUsed()

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func defaultDir(override string) string {
	if override != "" {
		return override
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "splitdiff")
}

// Validate reports the first invalid setting as a human error.
func (s Settings) Validate() error {
	if _, err := splitdiff.ParseGranularity(s.Granularity); err != nil {
		return health.NewHumanErr("invalid granularity "+strconv.Quote(s.Granularity)+": want broad or specific", "validate config", "granularity", s.Granularity)
	}
	if s.MaxHunks <= 0 {
		return health.NewHumanErr("max hunks must be positive", "validate config", "max_hunks", s.MaxHunks)
	}
	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return health.NewHumanErr("invalid color "+strconv.Quote(s.Color)+": want auto, always or never", "validate config", "color", s.Color)
	}
	if s.Width < 0 {
		return health.NewHumanErr("width must not be negative", "validate config", "width", s.Width)
	}
	return nil
}

// DiffConfig returns the splitdiff.Config described by s. s must be valid.
func (s Settings) DiffConfig(logger *slog.Logger) splitdiff.Config {
	g, _ := splitdiff.ParseGranularity(s.Granularity)
	return splitdiff.Config{
		Granularity:      g,
		MaxHunks:         s.MaxHunks,
		DisableCharDiffs: s.NoCharDiffs,
		Engine:           diffengine.NewDMP(&diffengine.Options{Timeout: s.DiffTimeout}),
		Logger:           logger,
	}
}

// Prepare applies the load-time text policy to a buffer: CRLF is normalized to LF unless KeepCRLF is set. crlf reports whether the buffer must be passed
// through Restore before it is written back: it is true when most of the original line endings were CRLF.
func (s Settings) Prepare(text string) (prepared string, crlf bool) {
	if s.KeepCRLF {
		return text, false
	}
	return diffengine.NormalizeEOL(text), diffengine.MostlyCRLF(text)
}

// Restore returns text with the line endings it was loaded with, given the crlf reported by Prepare.
func Restore(text string, crlf bool) string {
	if !crlf {
		return text
	}
	return diffengine.RestoreCRLF(text)
}
