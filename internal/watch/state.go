// Package watch holds the watch-list state machine: the tracked stocks, the
// UI mode, the selection cursor and the refresh jobs that update quotes in
// the background.
//
// State is owned by a single UI goroutine. The only value shared with refresh
// jobs is the List, which guards its own fields.
package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JasonZhangjc/stock-query/internal/quote"
	"github.com/JasonZhangjc/stock-query/internal/store"
)

// DefaultEveryTicks is the number of ticks between periodic refreshes.
const DefaultEveryTicks = 60

// NoSelection is the selection index when no row is selected.
const NoSelection = -1

// Options configures a State.
type Options struct {
	Provider quote.Provider
	Codes    store.CodeStore
	// Recorder is optional; when set every applied refresh is recorded.
	Recorder   store.QuoteRecorder
	Logger     *slog.Logger
	EveryTicks int
	Now        func() time.Time
}

// State is the application state. It is not safe for concurrent use except
// through the Jobs it returns.
type State struct {
	list     *List
	provider quote.Provider
	codes    store.CodeStore
	recorder store.QuoteRecorder
	logger   *slog.Logger
	now      func() time.Time

	mode       Mode
	selected   int
	ticks      uint64
	everyTicks uint64
	exit       bool
}

// New creates an empty State in Normal mode with no selection.
func New(opts Options) *State {
	s := &State{
		list:       NewList(nil),
		provider:   opts.Provider,
		codes:      opts.Codes,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		now:        opts.Now,
		mode:       Normal{},
		selected:   NoSelection,
		everyTicks: DefaultEveryTicks,
	}
	if opts.EveryTicks > 0 {
		s.everyTicks = uint64(opts.EveryTicks)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Load hydrates the list from the code store. A failed load leaves the list
// empty; the error is returned for logging only.
func (s *State) Load() error {
	if s.codes == nil {
		return nil
	}
	codes, err := s.codes.Load()
	if err != nil {
		s.list.reset(nil)
		return fmt.Errorf("loading tracked codes: %w", err)
	}
	s.list.reset(codes)
	s.selected = NoSelection
	s.logger.Info("loaded tracked codes", "count", len(codes))
	return nil
}

// List returns the shared list.
func (s *State) List() *List { return s.list }

// Mode returns the current mode.
func (s *State) Mode() Mode { return s.mode }

// Selected returns the selected index or NoSelection. The result is always
// within range of the current list.
func (s *State) Selected() int {
	s.selected = s.validSelection()
	return s.selected
}

// ExitRequested reports whether the main loop should stop.
func (s *State) ExitRequested() bool { return s.exit }

// Ticks returns the number of ticks seen so far.
func (s *State) Ticks() uint64 { return s.ticks }

func (s *State) validSelection() int {
	if s.selected < 0 || s.selected >= s.list.Len() {
		return NoSelection
	}
	return s.selected
}

// Refresh dispatches one fetch for every tracked code. It returns nil when
// the list is empty. Refreshes are not deduplicated; of overlapping jobs the
// most recently dispatched one that completes wins.
func (s *State) Refresh() Job {
	if s.list.Len() == 0 || s.provider == nil {
		return nil
	}
	gen, codes := s.list.dispatch()
	j := &refreshJob{
		list:     s.list,
		provider: s.provider,
		recorder: s.recorder,
		logger:   s.logger,
		now:      s.now,
		gen:      gen,
		codes:    codes,
	}
	s.logger.Debug("refresh dispatched", "generation", gen, "codes", len(codes))
	return j.run
}

// AddStock appends code, dispatches a refresh and persists the list. Duplicate
// codes are allowed. The returned Job is non-nil even when saving fails.
func (s *State) AddStock(code string) (Job, error) {
	codes := s.list.Append(code)
	job := s.Refresh()
	return job, s.save(codes)
}

// DeleteSelected removes the selected record, persists and clears the
// selection. It does nothing without a valid selection.
func (s *State) DeleteSelected() error {
	sel := s.validSelection()
	if sel == NoSelection {
		return nil
	}
	codes, ok := s.list.Remove(sel)
	if !ok {
		return nil
	}
	s.selected = NoSelection
	return s.save(codes)
}

// MoveSelectedUp swaps the selected record with its predecessor and keeps it
// selected.
func (s *State) MoveSelectedUp() error {
	sel := s.validSelection()
	if sel <= 0 {
		return nil
	}
	return s.moveSelected(sel, sel-1)
}

// MoveSelectedDown swaps the selected record with its successor and keeps it
// selected.
func (s *State) MoveSelectedDown() error {
	sel := s.validSelection()
	if sel == NoSelection || sel >= s.list.Len()-1 {
		return nil
	}
	return s.moveSelected(sel, sel+1)
}

func (s *State) moveSelected(from, to int) error {
	codes, ok := s.list.Swap(from, to)
	if !ok {
		return nil
	}
	s.selected = to
	return s.save(codes)
}

// MoveSelectionUp moves the cursor up, stopping at the first row. With no
// selection the first row is selected.
func (s *State) MoveSelectionUp() {
	if s.list.Len() == 0 {
		s.selected = NoSelection
		return
	}
	s.selected = max(s.validSelection()-1, 0)
}

// MoveSelectionDown moves the cursor down, stopping at the last row. With no
// selection the first row is selected.
func (s *State) MoveSelectionDown() {
	n := s.list.Len()
	if n == 0 {
		s.selected = NoSelection
		return
	}
	sel := s.validSelection()
	if sel == NoSelection {
		s.selected = 0
		return
	}
	s.selected = min(sel+1, n-1)
}

// SelectRow selects the list row at index. Out-of-range rows are ignored.
func (s *State) SelectRow(index int) {
	if index < 0 || index >= s.list.Len() {
		return
	}
	s.selected = index
}

// save persists codes. A failure leaves the in-memory change in place, is
// kept as the save error until the next successful save and is returned to
// the caller.
func (s *State) save(codes []string) error {
	if s.codes == nil {
		return nil
	}
	if err := s.codes.Save(codes); err != nil {
		err = fmt.Errorf("saving tracked codes: %w", err)
		s.logger.Error("persist failed", "error", err)
		s.list.setSaveError(err.Error())
		return err
	}
	s.list.setSaveError("")
	return nil
}

// Snapshot is the read-only view a renderer consumes for one frame.
type Snapshot struct {
	ListSnapshot
	Selected int
	Mode     Mode
}

// Input returns the add-mode buffer, or "" outside Adding.
func (s Snapshot) Input() string {
	if a, ok := s.Mode.(Adding); ok {
		return a.Input
	}
	return ""
}

// Snapshot copies everything a frame needs. Selected is validated against
// the copied list.
func (s *State) Snapshot() Snapshot {
	ls := s.list.Snapshot()
	sel := s.selected
	if sel < 0 || sel >= len(ls.Stocks) {
		sel = NoSelection
	}
	return Snapshot{ListSnapshot: ls, Selected: sel, Mode: s.mode}
}
