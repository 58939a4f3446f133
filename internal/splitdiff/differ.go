package splitdiff

import (
	"log/slog"

	"github.com/codalotl/splitdiff/internal/diffengine"
	"github.com/codalotl/splitdiff/internal/lineindex"
	"github.com/codalotl/splitdiff/internal/q/health"
)

// DefaultMaxHunks is the MaxHunks used when Config.MaxHunks is zero.
const DefaultMaxHunks = 5000

// Config configures a Differ. The zero value is usable: broad granularity, DefaultMaxHunks, char diffs on, the diff-match-patch engine, no logging.
type Config struct {
	Granularity Granularity

	// MaxHunks is the soft cap on hunks per pass. A pass producing more is suppressed: the Result carries no hunks and OnReady is not called. Zero means
	// DefaultMaxHunks; negative values are invalid.
	MaxHunks int

	// DisableCharDiffs omits LeftChars/RightChars from hunks.
	DisableCharDiffs bool

	// Engine computes the character diff. nil means diffengine.NewDMP(nil).
	Engine diffengine.Engine

	Logger *slog.Logger

	// OnReady, if set, is called with the final hunks at the end of every pass that is not suppressed.
	OnReady func(hunks []Hunk)
}

// Validate reports whether c is usable.
func (c Config) Validate() error {
	if c.Granularity != GranularityBroad && c.Granularity != GranularitySpecific {
		return health.NewKindErr(health.KindInput, "invalid granularity", "granularity", int(c.Granularity))
	}
	if c.MaxHunks < 0 {
		return health.NewKindErr(health.KindInput, "max hunks must not be negative", "max_hunks", c.MaxHunks)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxHunks == 0 {
		c.MaxHunks = DefaultMaxHunks
	}
	if c.Engine == nil {
		c.Engine = diffengine.NewDMP(nil)
	}
	return c
}

// Result is the outcome of one pass over a pair of buffers.
type Result struct {
	Left  string `json:"-" yaml:"-"`
	Right string `json:"-" yaml:"-"`

	// Hunks is the final hunk list in document order. nil when Suppressed.
	Hunks []Hunk `json:"hunks" yaml:"hunks"`

	// Total is the number of hunks the pass produced, including when Suppressed.
	Total int `json:"total" yaml:"total"`

	Suppressed  bool        `json:"suppressed" yaml:"suppressed"`
	Granularity Granularity `json:"granularity" yaml:"granularity"`
}

// Differ computes hunks for pairs of buffers. It holds only immutable configuration and is safe for concurrent use.
type Differ struct {
	cfg Config
	h   health.Ctx
}

// New validates cfg and returns a Differ.
func New(cfg Config) (*Differ, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Differ{cfg: cfg, h: health.NewCtx(cfg.Logger)}, nil
}

// Config returns d's configuration with defaults filled in.
func (d *Differ) Config() Config {
	return d.cfg
}

// Diff runs one pass: index both buffers, diff RIGHT (base) against LEFT (revision), map ops to raw hunks, group them, and resolve conflicts.
//
// It returns a KindContract error if the engine violates its contract.
func (d *Differ) Diff(left, right string) (Result, error) {
	leftIdx := lineindex.Build(left)
	rightIdx := lineindex.Build(right)

	ops := d.cfg.Engine.Diff(right, left)
	if err := diffengine.Validate(ops, right, left); err != nil {
		return Result{}, d.h.LogErr(health.WrapKind(health.KindContract, "diff engine violated its contract", err, "ops", len(ops)))
	}

	mapped, err := MapOps(ops, leftIdx, rightIdx, !d.cfg.DisableCharDiffs)
	if err != nil {
		return Result{}, d.h.LogErr(err)
	}

	grouped := Group(mapped.Hunks, d.cfg.Granularity)
	hunks := ResolveConflicts(grouped)

	res := Result{
		Left:        left,
		Right:       right,
		Total:       len(hunks),
		Granularity: d.cfg.Granularity,
	}

	if len(hunks) > d.cfg.MaxHunks {
		res.Suppressed = true
		d.h.Warn("too many hunks; diff suppressed", "hunks", len(hunks), "max_hunks", d.cfg.MaxHunks)
		return res, nil
	}

	res.Hunks = hunks
	d.h.Debug("diff pass", "ops", len(ops), "raw", len(mapped.Hunks), "grouped", len(grouped), "hunks", len(hunks), "clamped", mapped.Clamped, "granularity", d.cfg.Granularity.String())

	if d.cfg.OnReady != nil {
		d.cfg.OnReady(hunks)
	}
	return res, nil
}

// Compute is New(cfg) followed by Diff(left, right).
func Compute(left, right string, cfg Config) (Result, error) {
	d, err := New(cfg)
	if err != nil {
		return Result{}, err
	}
	return d.Diff(left, right)
}
