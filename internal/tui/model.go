// Package tui renders the watch list in the terminal with bubbletea and
// feeds terminal events into the watch state machine.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JasonZhangjc/stock-query/internal/watch"
)

// Screen rows above the first list row: the title bar and the list border.
const listTop = 2

// Messages.
type tickMsg time.Time
type refreshMsg watch.Result

// Options configures a Model.
type Options struct {
	State   *watch.State
	Logger  *slog.Logger
	Tick    time.Duration
	Version string
}

// Model is the bubbletea model. All state-machine calls happen inside Update,
// so ticks and input never interleave.
type Model struct {
	state   *watch.State
	logger  *slog.Logger
	keys    keyMap
	help    help.Model
	tick    time.Duration
	version string

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	offset        int // first visible list row
}

// New creates a Model. Refresh jobs run under a context derived from ctx
// that is cancelled on quit.
func New(ctx context.Context, opts Options) Model {
	ctx, cancel := context.WithCancel(ctx)
	m := Model{
		state:   opts.State,
		logger:  opts.Logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		tick:    opts.Tick,
		version: opts.Version,
		ctx:     ctx,
		cancel:  cancel,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.tick <= 0 {
		m.tick = time.Second
	}
	return m
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runJob wraps a refresh job as a command. A nil job yields a nil command.
func (m Model) runJob(job watch.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return refreshMsg(job(ctx))
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), m.runJob(m.state.Refresh()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.quit()
		}
		var cmds []tea.Cmd
		for _, k := range translateKey(msg) {
			job, err := m.state.HandleKey(k)
			if err != nil {
				m.logger.Warn("key handling", "key", msg.String(), "error", err)
			}
			cmds = append(cmds, m.runJob(job))
			if m.state.ExitRequested() {
				return m.quit()
			}
		}
		m.ensureVisible()
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.X >= m.listWidth() {
			return m, nil
		}
		// Only rows between the pane borders map to list rows.
		if msg.Y < listTop || msg.Y >= listTop+m.listHeight() {
			return m, nil
		}
		m.state.HandleClick(msg.Y - listTop + m.offset)
		m.ensureVisible()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(m.tick), m.runJob(m.state.Tick()))

	case refreshMsg:
		res := watch.Result(msg)
		switch {
		case res.Stale:
			m.logger.Debug("refresh dropped", "generation", res.Generation)
		case res.Err != nil:
			m.logger.Warn("refresh failed", "generation", res.Generation, "error", res.Err)
		default:
			m.logger.Info("refresh done", "generation", res.Generation,
				"codes", res.Codes, "quotes", res.Quotes, "took", res.Duration)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.logger.Info("exit requested")
	return m, tea.Quit
}

// listHeight is the number of list rows that fit between the borders.
func (m Model) listHeight() int {
	// title + status bar + two border lines
	return max(m.height-4, 1)
}

// listWidth is the outer width of the list pane.
func (m Model) listWidth() int {
	if m.width <= 0 {
		return 0
	}
	return max(m.width*3/10, 12)
}

// ensureVisible scrolls so the selected row is on screen.
func (m *Model) ensureVisible() {
	n := m.state.List().Len()
	h := m.listHeight()
	if sel := m.state.Selected(); sel != watch.NoSelection {
		if sel < m.offset {
			m.offset = sel
		} else if sel >= m.offset+h {
			m.offset = sel - h + 1
		}
	}
	m.offset = max(min(m.offset, n-h), 0)
}
