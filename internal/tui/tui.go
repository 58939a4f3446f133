// Package tui is the interactive merge host. It shows two buffers side by side, moves between hunks, copies the selected hunk in either direction, and writes
// edited buffers back to their files. Every copy is followed by a fresh diff pass.
package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/codalotl/splitdiff/internal/config"
	"github.com/codalotl/splitdiff/internal/q/health"
	"github.com/codalotl/splitdiff/internal/render"
	"github.com/codalotl/splitdiff/internal/splitdiff"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const toastDuration = 2 * time.Second

// Options configure Run.
type Options struct {
	LeftPath  string // written by the write key; empty means the left buffer cannot be written
	RightPath string

	// A read-only side never receives copies.
	LeftReadOnly  bool
	RightReadOnly bool

	// A CRLF side is written back with "\r\n" line endings; its buffer is held with "\n" ones.
	LeftCRLF  bool
	RightCRLF bool

	Diff splitdiff.Config

	// Render supplies Color, TabWidth and EastAsianWidth. Width, Context, Selected and editability are owned by the model.
	Render render.Options

	Logger *slog.Logger

	// In and Out default to the process's terminal.
	In  io.Reader
	Out io.Writer
}

// Run shows left and right until the user quits.
func Run(left, right string, opts Options) error {
	m, err := newModel(left, right, opts)
	if err != nil {
		return err
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.In != nil {
		progOpts = append(progOpts, tea.WithInput(opts.In))
	}
	if opts.Out != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Out))
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		return health.Wrap("run tui", err)
	}
	if fm, ok := final.(model); ok {
		return fm.err
	}
	return nil
}

type toastExpiredMsg struct {
	id int
}

type model struct {
	opts   Options
	h      health.Ctx
	differ *splitdiff.Differ
	keys   keyMap
	help   help.Model

	left, right string
	res         splitdiff.Result
	selected    int     // index into res.Hunks; -1 when there are none
	dirty       [2]bool // indexed by splitdiff.Side

	viewport      viewport.Model
	ready         bool
	width, height int
	pendingScroll bool

	status      string
	toastSeq    int
	confirmQuit bool

	err      error
	quitting bool
}

func newModel(left, right string, opts Options) (model, error) {
	if opts.Diff.Logger == nil {
		opts.Diff.Logger = opts.Logger
	}
	d, err := splitdiff.New(opts.Diff)
	if err != nil {
		return model{}, err
	}

	m := model{
		opts:     opts,
		h:        health.NewCtx(opts.Logger),
		differ:   d,
		keys:     defaultKeyMap(),
		help:     help.New(),
		left:     left,
		right:    right,
		selected: -1,
	}
	if err := m.recompute(); err != nil {
		return model{}, err
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toastExpiredMsg:
		if msg.id == m.toastSeq {
			m.status = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		m.layout()
		m.pendingScroll = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	armed := m.confirmQuit
	m.confirmQuit = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.unsaved() && !armed && msg.Type != tea.KeyCtrlC {
			m.confirmQuit = true
			return m.showToast("unsaved changes: w writes, q again quits"), true
		}
		m.quitting = true
		return tea.Quit, true
	case key.Matches(msg, m.keys.Next):
		m.move(1)
	case key.Matches(msg, m.keys.Prev):
		m.move(-1)
	case key.Matches(msg, m.keys.CopyToRight):
		return m.merge(splitdiff.LeftToRight), true
	case key.Matches(msg, m.keys.CopyToLeft):
		return m.merge(splitdiff.RightToLeft), true
	case key.Matches(msg, m.keys.Granularity):
		return m.toggleGranularity(), true
	case key.Matches(msg, m.keys.Write):
		return m.write(), true
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	default:
		return nil, false
	}
	return nil, true
}

func (m *model) showToast(message string) tea.Cmd {
	m.status = message
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: seq}
	})
}

// fail ends the program with err.
func (m *model) fail(err error) tea.Cmd {
	m.err = m.h.LogErr(err)
	m.quitting = true
	return tea.Quit
}

func (m *model) move(delta int) {
	if len(m.res.Hunks) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.res.Hunks)-1)
	m.pendingScroll = true
	m.refresh()
}

func (m *model) merge(dir splitdiff.Direction) tea.Cmd {
	if m.selected < 0 {
		return m.showToast("no hunk selected")
	}
	target := dir.Target()
	if m.readOnly(target) {
		return m.showToast(target.String() + " side is read-only")
	}
	if !m.res.Hunks[m.selected].CanMerge(dir) {
		return m.showToast("nothing to copy to the " + target.String())
	}

	left, right, err := m.res.Merge(m.selected, dir, m.left, m.right)
	if errors.Is(err, splitdiff.ErrStale) {
		if err := m.recompute(); err != nil {
			return m.fail(err)
		}
		return m.showToast("hunks were out of date; recomputed")
	} else if err != nil {
		return m.fail(err)
	}

	index := m.selected
	m.left, m.right = left, right
	m.dirty[target] = true
	m.h.Debug("copied hunk", "hunk", index, "direction", dir.String())

	if err := m.recompute(); err != nil {
		return m.fail(err)
	}
	return m.showToast(fmt.Sprintf("copied hunk %d to the %s", index+1, target))
}

func (m *model) toggleGranularity() tea.Cmd {
	cfg := m.differ.Config()
	if cfg.Granularity == splitdiff.GranularityBroad {
		cfg.Granularity = splitdiff.GranularitySpecific
	} else {
		cfg.Granularity = splitdiff.GranularityBroad
	}
	d, err := splitdiff.New(cfg)
	if err != nil {
		return m.fail(err)
	}
	m.differ = d
	if err := m.recompute(); err != nil {
		return m.fail(err)
	}
	return m.showToast("granularity: " + cfg.Granularity.String())
}

func (m *model) write() tea.Cmd {
	var wrote []string
	for _, side := range []splitdiff.Side{splitdiff.SideLeft, splitdiff.SideRight} {
		if !m.dirty[side] {
			continue
		}
		path := m.path(side)
		if path == "" {
			return m.showToast(side.String() + " buffer has no file to write to")
		}
		if err := writeFile(path, m.fileText(side)); err != nil {
			m.h.LogErr(err)
			return m.showToast("write failed: " + err.Error())
		}
		m.dirty[side] = false
		wrote = append(wrote, filepath.Base(path))
	}
	if len(wrote) == 0 {
		return m.showToast("nothing to write")
	}
	m.h.Log("wrote buffers", "files", wrote)
	return m.showToast("wrote " + strings.Join(wrote, ", "))
}

// writeFile replaces path's contents, keeping its permissions.
func writeFile(path, text string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		return health.Wrap("write buffer", err, "path", path)
	}
	return nil
}

// recompute runs a diff pass over the current buffers and keeps the selection in range.
func (m *model) recompute() error {
	res, err := m.differ.Diff(m.left, m.right)
	if err != nil {
		return err
	}
	m.res = res

	switch {
	case len(res.Hunks) == 0:
		m.selected = -1
	case m.selected < 0:
		m.selected = 0
	case m.selected >= len(res.Hunks):
		m.selected = len(res.Hunks) - 1
	}
	m.pendingScroll = true
	m.refresh()
	return nil
}

// layout sizes the viewport to whatever the header, status line and help leave over.
func (m *model) layout() {
	if !m.ready {
		return
	}
	chrome := 2 + lipgloss.Height(m.help.View(m.keys))
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 1)
}

// refresh re-renders the diff into the viewport and, if a scroll is pending, centers the selected hunk.
func (m *model) refresh() {
	if !m.ready {
		return
	}

	ro := m.opts.Render
	ro.Width = m.width
	ro.Context = -1
	ro.Selected = m.selected
	ro.LeftEditable = !m.opts.LeftReadOnly
	ro.RightEditable = !m.opts.RightReadOnly
	ro.LeftTitle, ro.RightTitle = "", ""

	view := render.SideBySide(m.res, ro)
	m.viewport.SetContent(strings.Join(view.Lines, "\n"))

	if m.pendingScroll && m.selected >= 0 && m.selected < len(view.HunkRows) {
		ensureVisible(&m.viewport, view.HunkRows[m.selected], len(view.Lines))
	}
	m.pendingScroll = false
}

func ensureVisible(vp *viewport.Model, row, total int) {
	if vp.Height <= 0 || row < 0 {
		return
	}
	maxOffset := max(total-vp.Height, 0)
	vp.SetYOffset(min(max(row-vp.Height/2, 0), maxOffset))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "initializing"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View(), m.statusLine(), m.help.View(m.keys))
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Reverse(true)
)

func (m model) header() string {
	pane := max((m.width-3)/2, 1)
	cell := func(side splitdiff.Side) string {
		title := m.path(side)
		if title == "" {
			title = side.String()
		}
		if m.dirty[side] {
			title += " *"
		}
		if m.readOnly(side) {
			title += " (read-only)"
		}
		return titleStyle.Width(pane).Render(truncateLeft(title, pane))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cell(splitdiff.SideLeft), "   ", cell(splitdiff.SideRight))
}

// truncateLeft cuts s from the front to fit in w columns, so the end of a long path stays visible.
func truncateLeft(s string, w int) string {
	if runewidth.StringWidth(s) <= w {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 && runewidth.StringWidth(string(rs))+1 > w {
		rs = rs[1:]
	}
	return "…" + string(rs)
}

func (m model) statusLine() string {
	var summary string
	switch {
	case m.res.Suppressed:
		summary = fmt.Sprintf("diff suppressed: %s hunks", humanize.Comma(int64(m.res.Total)))
	case len(m.res.Hunks) == 0:
		summary = "no differences"
	default:
		summary = fmt.Sprintf("hunk %d/%d", m.selected+1, len(m.res.Hunks))
	}
	summary += " · " + m.res.Granularity.String()
	if m.status != "" {
		summary += " · " + m.status
	}
	w := max(m.width, 1)
	return statusStyle.Width(w).Render(runewidth.Truncate(summary, w, "…"))
}

func (m model) unsaved() bool {
	return m.dirty[splitdiff.SideLeft] || m.dirty[splitdiff.SideRight]
}

func (m model) readOnly(side splitdiff.Side) bool {
	if side == splitdiff.SideLeft {
		return m.opts.LeftReadOnly
	}
	return m.opts.RightReadOnly
}

func (m model) path(side splitdiff.Side) string {
	if side == splitdiff.SideLeft {
		return m.opts.LeftPath
	}
	return m.opts.RightPath
}

func (m model) text(side splitdiff.Side) string {
	if side == splitdiff.SideLeft {
		return m.left
	}
	return m.right
}

// fileText is side's buffer as it is written to disk.
func (m model) fileText(side splitdiff.Side) string {
	crlf := m.opts.LeftCRLF
	if side == splitdiff.SideRight {
		crlf = m.opts.RightCRLF
	}
	return config.Restore(m.text(side), crlf)
}
