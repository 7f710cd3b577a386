// Package store persists the tracked code list and, optionally, a log of
// fetched quotes with a Parquet export of that log.
package store

import (
	"context"
	"time"

	"github.com/JasonZhangjc/stock-query/internal/domain"
)

// CodeStore loads and saves the ordered list of tracked codes.
type CodeStore interface {
	// Load returns the persisted codes in display order.
	Load() ([]string, error)

	// Save replaces the persisted codes.
	Save(codes []string) error
}

// QuoteRecorder appends the quotes of one successful refresh.
type QuoteRecorder interface {
	Record(ctx context.Context, at time.Time, stocks []domain.Stock) error
}

// QuoteRow is one logged quote.
type QuoteRow struct {
	Code      string  `parquet:"code"`
	Title     string  `parquet:"title"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Price     float64 `parquet:"price"`
	Percent   float64 `parquet:"percent"`
	Open      float64 `parquet:"open"`
	PrevClose float64 `parquet:"prev_close"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
}
