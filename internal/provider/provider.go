package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"pattas/pkg/model"
)

// ErrInsufficientHistory is returned when no source yields enough price
// points for indicator computation.
var ErrInsufficientHistory = errors.New("insufficient price history")

// HistorySource fetches daily price history for a ticker.
// days is the lookback window in calendar days.
type HistorySource interface {
	Name() string
	GetHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error)
}

// FundamentalsProvider fetches best-effort fundamental data
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, ticker string) (model.FundamentalSnapshot, error)
}

// RawNewsItem is a semi-structured news entry as returned by a news feed.
// Fields may sit at the top level or nested one level under "content";
// normalization happens downstream.
type RawNewsItem map[string]any

// NewsProvider fetches raw news items for a ticker
type NewsProvider interface {
	GetNews(ctx context.Context, ticker string) ([]RawNewsItem, error)
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HistoryChain tries history sources in order with a uniform failure
// predicate: a source that errors, returns nothing, or returns fewer than
// minPoints points is skipped and the next source is tried.
type HistoryChain struct {
	sources   []HistorySource
	minPoints int
}

// NewHistoryChain creates a history chain over the given ordered sources
func NewHistoryChain(minPoints int, sources ...HistorySource) *HistoryChain {
	return &HistoryChain{sources: sources, minPoints: minPoints}
}

// Fetch returns the first sufficient history, sorted chronologically.
// When every source fails the predicate, the result wraps
// ErrInsufficientHistory along with the last source error seen.
func (c *HistoryChain) Fetch(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	var lastErr error
	for _, s := range c.sources {
		points, err := s.GetHistory(ctx, ticker, days)
		if err != nil {
			lastErr = err
			continue
		}
		if len(points) < c.minPoints {
			lastErr = fmt.Errorf("%s: %d points, need %d", s.Name(), len(points), c.minPoints)
			continue
		}
		sort.Slice(points, func(i, j int) bool {
			return points[i].Date.Before(points[j].Date)
		})
		return points, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientHistory, lastErr)
	}
	return nil, ErrInsufficientHistory
}
