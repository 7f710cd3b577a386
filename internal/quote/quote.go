// Package quote fetches live quotes for a set of stock codes from a remote
// feed. Providers perform one round trip per call and never touch shared
// state; writing results back is the caller's job.
package quote

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JasonZhangjc/stock-query/internal/config"
	"github.com/JasonZhangjc/stock-query/internal/domain"
)

// ErrProtocol reports a response that does not match the expected envelope.
var ErrProtocol = errors.New("unexpected quote server response")

// Provider fetches quotes for codes. Codes absent from the result were not
// known to the feed.
type Provider interface {
	Fetch(ctx context.Context, codes []string) (map[string]domain.Quote, error)
}

// New builds the provider selected by cfg.Feed.Provider, wrapped in a
// Batched splitter when a batch size is configured.
func New(cfg *config.Config) (Provider, error) {
	var p Provider
	switch cfg.Feed.Provider {
	case config.ProviderNetEase, "":
		p = NewNetEase(cfg.Feed.URL, cfg.Feed.Timeout, cfg.Feed.Charset)
	case config.ProviderAlpaca:
		if cfg.Alpaca.APIKey == "" {
			return nil, fmt.Errorf("alpaca provider requires an API key")
		}
		p = NewAlpaca(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Alpaca.Feed)
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Feed.Provider)
	}
	if cfg.Feed.BatchSize > 0 {
		p = &Batched{Provider: p, Size: cfg.Feed.BatchSize}
	}
	return p, nil
}

// Batched splits code lists longer than Size into concurrent requests and
// merges the results. Any failing batch fails the whole fetch.
type Batched struct {
	Provider Provider
	Size     int
}

// Fetch implements Provider.
func (b *Batched) Fetch(ctx context.Context, codes []string) (map[string]domain.Quote, error) {
	if b.Size <= 0 || len(codes) <= b.Size {
		return b.Provider.Fetch(ctx, codes)
	}

	var batches [][]string
	for start := 0; start < len(codes); start += b.Size {
		end := min(start+b.Size, len(codes))
		batches = append(batches, codes[start:end])
	}

	results := make([]map[string]domain.Quote, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			m, err := b.Provider.Fetch(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]domain.Quote, len(codes))
	for _, m := range results {
		for code, q := range m {
			merged[code] = q
		}
	}
	return merged, nil
}
