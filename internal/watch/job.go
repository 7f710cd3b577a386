package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JasonZhangjc/stock-query/internal/quote"
	"github.com/JasonZhangjc/stock-query/internal/store"
)

// ServerErrorMessage is shown when the feed answers with an unexpected body.
const ServerErrorMessage = "server error"

// Job is one dispatched refresh. It performs the fetch, writes the outcome
// back into the shared list and reports what happened. A Job is safe to run
// on any goroutine and to abandon.
type Job func(ctx context.Context) Result

// Result describes a finished Job.
type Result struct {
	Generation uint64
	Codes      int
	Quotes     int
	Err        error
	// Stale is set when a newer refresh had already been written back, in
	// which case this result was dropped.
	Stale    bool
	Duration time.Duration
}

// refreshJob captures codes at dispatch time so later structural changes do
// not affect the request.
type refreshJob struct {
	list     *List
	provider quote.Provider
	recorder store.QuoteRecorder
	logger   *slog.Logger
	now      func() time.Time
	gen      uint64
	codes    []string
}

func (j *refreshJob) run(ctx context.Context) Result {
	start := j.now()
	res := Result{Generation: j.gen, Codes: len(j.codes)}

	quotes, err := j.provider.Fetch(ctx, j.codes)
	res.Duration = j.now().Sub(start)
	if err != nil {
		res.Err = err
		res.Stale = !j.list.applyError(j.gen, errorMessage(err))
		return res
	}

	res.Quotes = len(quotes)
	at := j.now()
	updated, ok := j.list.applyQuotes(j.gen, quotes, at)
	if !ok {
		res.Stale = true
		return res
	}

	if j.recorder != nil && len(updated) > 0 {
		if err := j.recorder.Record(ctx, at, updated); err != nil {
			j.logger.Warn("recording quotes", "generation", j.gen, "error", err)
		}
	}
	return res
}

// errorMessage turns a fetch failure into the text shown to the user.
func errorMessage(err error) string {
	if errors.Is(err, quote.ErrProtocol) {
		return ServerErrorMessage
	}
	return err.Error()
}
