package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/JasonZhangjc/stock-query/internal/domain"
)

// Alpaca fetches US equity snapshots from the Alpaca market-data API.
type Alpaca struct {
	client *marketdata.Client
	feed   string
}

// NewAlpaca creates an Alpaca provider. dataURL and feed may be empty.
func NewAlpaca(apiKey, apiSecret, dataURL, feed string) *Alpaca {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &Alpaca{
		client: marketdata.NewClient(opts),
		feed:   feed,
	}
}

// Fetch requests one snapshot per code. Symbols are matched
// case-insensitively and reported under the caller's spelling.
func (a *Alpaca) Fetch(ctx context.Context, codes []string) (map[string]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbols := make([]string, len(codes))
	for i, c := range codes {
		symbols[i] = strings.ToUpper(c)
	}

	snaps, err := a.client.GetSnapshots(symbols, marketdata.GetSnapshotRequest{
		Feed: marketdata.Feed(a.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching snapshots: %w", err)
	}

	quotes := make(map[string]domain.Quote, len(snaps))
	for i, code := range codes {
		snap, ok := snaps[symbols[i]]
		if !ok || snap == nil {
			continue
		}
		quotes[code] = snapshotQuote(symbols[i], snap)
	}
	return quotes, nil
}

// snapshotQuote maps a snapshot to a quote. Price prefers the latest trade
// and falls back to the daily bar close.
func snapshotQuote(symbol string, s *marketdata.Snapshot) domain.Quote {
	q := domain.Quote{Name: symbol}
	if s.DailyBar != nil {
		q.Open = s.DailyBar.Open
		q.High = s.DailyBar.High
		q.Low = s.DailyBar.Low
		q.Price = s.DailyBar.Close
	}
	if s.LatestTrade != nil {
		q.Price = s.LatestTrade.Price
	}
	if s.PrevDailyBar != nil {
		q.PrevClose = s.PrevDailyBar.Close
	}
	if q.PrevClose != 0 {
		q.Percent = (q.Price - q.PrevClose) / q.PrevClose
	}
	return q
}
