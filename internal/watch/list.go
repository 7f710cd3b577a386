package watch

import (
	"sync"
	"time"

	"github.com/JasonZhangjc/stock-query/internal/domain"
)

// List is the lock-guarded container shared between the UI goroutine and
// refresh jobs. Structural changes (append, remove, swap) come only from the
// UI goroutine; jobs only overwrite quote fields through applyQuotes.
type List struct {
	mu          sync.RWMutex
	stocks      []domain.Stock
	lastErr     string // last fetch outcome
	saveErr     string // last persistence failure, cleared by a successful save
	lastRefresh time.Time

	dispatched uint64 // generation of the newest dispatched refresh
	applied    uint64 // generation of the newest refresh written back
}

// NewList creates a list with a default record per code, in order.
func NewList(codes []string) *List {
	l := &List{}
	l.reset(codes)
	return l
}

func (l *List) reset(codes []string) {
	stocks := make([]domain.Stock, len(codes))
	for i, c := range codes {
		stocks[i] = domain.NewStock(c)
	}
	l.mu.Lock()
	l.stocks = stocks
	l.mu.Unlock()
}

// Len returns the number of tracked stocks.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.stocks)
}

// Codes returns a copy of the tracked codes in display order.
func (l *List) Codes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.Codes(l.stocks)
}

// Stocks returns a copy of the tracked records.
func (l *List) Stocks() []domain.Stock {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Stock, len(l.stocks))
	copy(out, l.stocks)
	return out
}

// Append adds a default record for code and returns the resulting codes.
func (l *List) Append(code string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stocks = append(l.stocks, domain.NewStock(code))
	return domain.Codes(l.stocks)
}

// Remove deletes the record at i. It reports false and leaves the list alone
// when i is out of range.
func (l *List) Remove(i int) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.stocks) {
		return nil, false
	}
	l.stocks = append(l.stocks[:i], l.stocks[i+1:]...)
	return domain.Codes(l.stocks), true
}

// Swap exchanges the records at i and j. It reports false when either index
// is out of range.
func (l *List) Swap(i, j int) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.stocks)
	if i < 0 || i >= n || j < 0 || j >= n {
		return nil, false
	}
	l.stocks[i], l.stocks[j] = l.stocks[j], l.stocks[i]
	return domain.Codes(l.stocks), true
}

// setSaveError replaces the persistence error. Fetch outcomes never touch it.
func (l *List) setSaveError(msg string) {
	l.mu.Lock()
	l.saveErr = msg
	l.mu.Unlock()
}

// dispatch reserves the next refresh generation and captures the codes to
// fetch for it.
func (l *List) dispatch() (uint64, []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatched++
	return l.dispatched, domain.Codes(l.stocks)
}

// applyQuotes writes a successful fetch back. Every record whose code is in
// quotes is overwritten; the rest keep their values. It returns copies of the
// overwritten records as they stood under the lock. Results older than the
// newest applied generation are dropped and false is returned.
func (l *List) applyQuotes(gen uint64, quotes map[string]domain.Quote, at time.Time) ([]domain.Stock, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen <= l.applied {
		return nil, false
	}
	l.applied = gen
	var updated []domain.Stock
	for i := range l.stocks {
		if q, ok := quotes[l.stocks[i].Code]; ok {
			l.stocks[i].Apply(q)
			updated = append(updated, l.stocks[i])
		}
	}
	l.lastErr = ""
	l.lastRefresh = at
	return updated, true
}

// applyError records a failed fetch, subject to the same generation check as
// applyQuotes. Quote fields are left untouched.
func (l *List) applyError(gen uint64, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen <= l.applied {
		return false
	}
	l.applied = gen
	l.lastErr = msg
	return true
}

// ListSnapshot is a consistent copy of the shared fields.
type ListSnapshot struct {
	Stocks      []domain.Stock
	LastError   string
	SaveError   string
	LastRefresh time.Time
}

// Status returns the message to show the user, or "" when all is well.
func (s ListSnapshot) Status() string {
	switch {
	case s.LastError != "" && s.SaveError != "":
		return s.SaveError + " | " + s.LastError
	case s.SaveError != "":
		return s.SaveError
	default:
		return s.LastError
	}
}

// Snapshot copies the shared fields under one read lock.
func (l *List) Snapshot() ListSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stocks := make([]domain.Stock, len(l.stocks))
	copy(stocks, l.stocks)
	return ListSnapshot{
		Stocks:      stocks,
		LastError:   l.lastErr,
		SaveError:   l.saveErr,
		LastRefresh: l.lastRefresh,
	}
}
