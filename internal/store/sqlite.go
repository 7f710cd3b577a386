package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JasonZhangjc/stock-query/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ QuoteRecorder = (*QuoteLog)(nil)

const quoteSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	code       TEXT    NOT NULL,
	title      TEXT    NOT NULL,
	ts         INTEGER NOT NULL,
	price      REAL    NOT NULL,
	percent    REAL    NOT NULL,
	open       REAL    NOT NULL,
	prev_close REAL    NOT NULL,
	high       REAL    NOT NULL,
	low        REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS quotes_code_ts ON quotes (code, ts);
`

// QuoteLog appends fetched quotes to a SQLite database.
type QuoteLog struct {
	db *sql.DB
}

// OpenQuoteLog opens (or creates) the database at dbPath and ensures the
// schema exists.
func OpenQuoteLog(dbPath string) (*QuoteLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// Refresh jobs record concurrently; SQLite takes one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(quoteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating quote schema: %w", err)
	}
	return &QuoteLog{db: db}, nil
}

// Close closes the underlying database connection.
func (l *QuoteLog) Close() error {
	return l.db.Close()
}

// Record inserts one row per stock stamped with at, in a single transaction.
func (l *QuoteLog) Record(ctx context.Context, at time.Time, stocks []domain.Stock) error {
	if len(stocks) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO quotes
		(code, title, ts, price, percent, open, prev_close, high, low)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ts := at.UnixMilli()
	for _, s := range stocks {
		if _, err := stmt.ExecContext(ctx, s.Code, s.Title, ts,
			s.Price, s.Percent, s.Open, s.PrevClose, s.High, s.Low); err != nil {
			return fmt.Errorf("inserting quote %s: %w", s.Code, err)
		}
	}
	return tx.Commit()
}

// All returns every logged row ordered by time then code.
func (l *QuoteLog) All(ctx context.Context) ([]QuoteRow, error) {
	return l.query(ctx, `SELECT code, title, ts, price, percent, open, prev_close, high, low
		FROM quotes ORDER BY ts, code`)
}

// Latest returns the most recent row for each code, ordered by code.
func (l *QuoteLog) Latest(ctx context.Context) ([]QuoteRow, error) {
	return l.query(ctx, `SELECT q.code, q.title, q.ts, q.price, q.percent, q.open, q.prev_close, q.high, q.low
		FROM quotes q
		JOIN (SELECT code, MAX(ts) AS ts FROM quotes GROUP BY code) m
		  ON q.code = m.code AND q.ts = m.ts
		GROUP BY q.code
		ORDER BY q.code`)
}

func (l *QuoteLog) query(ctx context.Context, q string) ([]QuoteRow, error) {
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuoteRow
	for rows.Next() {
		var r QuoteRow
		if err := rows.Scan(&r.Code, &r.Title, &r.Timestamp, &r.Price, &r.Percent,
			&r.Open, &r.PrevClose, &r.High, &r.Low); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
