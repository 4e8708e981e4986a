package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pattas/internal/provider"
	"pattas/internal/ratelimit"
	"pattas/pkg/model"
)

// Store is the persistence surface the runner needs
type Store interface {
	Tickers(ctx context.Context) ([]string, error)
	UpsertDailySignals(ctx context.Context, records []model.DailySignalRecord) error
}

// SidecarWriter rewrites the news-link sidecar for the tickers of one run
type SidecarWriter interface {
	Replace(news map[string][]model.NewsItem) error
}

// Runner iterates the watch-list once, processing tickers sequentially with
// a fixed pace between them, and persists all results in bulk afterwards.
// Per-ticker failures are collected, never propagated.
type Runner struct {
	store     Store
	sidecar   SidecarWriter
	processor *Processor
	pacer     *ratelimit.Limiter
	progress  func(done, total int)
}

// NewRunner creates a batch runner pacing tickers at one per pause interval
func NewRunner(store Store, sidecar SidecarWriter, processor *Processor, pause time.Duration) *Runner {
	return &Runner{
		store:     store,
		sidecar:   sidecar,
		processor: processor,
		pacer:     ratelimit.NewPacer("tickers", pause),
	}
}

// SetProgressCallback sets a callback invoked after each ticker
func (r *Runner) SetProgressCallback(fn func(done, total int)) {
	r.progress = fn
}

// Run executes one batch over the whole watch-list. The returned error is
// non-nil only when the run could not proceed at all (universe load failure
// or cancellation); persistence failures are logged and the computed
// results are still returned.
func (r *Runner) Run(ctx context.Context) (*model.RunResult, error) {
	start := time.Now()
	result := &model.RunResult{
		RunID: uuid.NewString(),
		Date:  start.Format("2006-01-02"),
		News:  make(map[string][]model.NewsItem),
	}

	tickers, err := r.store.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading watch-list: %w", err)
	}
	log.Printf("[RUNNER] run %s: processing %d tickers", result.RunID, len(tickers))

	for i, ticker := range tickers {
		if err := r.pacer.Wait(ctx); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}

		res, err := r.processor.Process(ctx, ticker)
		switch {
		case err == nil:
			result.Records = append(result.Records, res.Record)
			result.News[ticker] = res.News
			log.Printf("[RUNNER] %s: rsi=%.2f status=%s", ticker, res.Record.RSI, res.Record.Status)
		case errors.Is(err, provider.ErrInsufficientHistory):
			result.Insufficient = append(result.Insufficient, ticker)
			log.Printf("[RUNNER] %s: insufficient data, skipping", ticker)
		default:
			result.Errors = append(result.Errors, model.TickerError{Ticker: ticker, Reason: err.Error()})
			log.Printf("[RUNNER] %s: error: %v", ticker, err)
		}

		if r.progress != nil {
			r.progress(i+1, len(tickers))
		}
	}

	// Bulk persistence after the loop. Write failures do not discard the
	// in-memory results; the run still reports its summary.
	if len(result.Records) > 0 {
		if err := r.store.UpsertDailySignals(ctx, result.Records); err != nil {
			log.Printf("[RUNNER] run %s: signal upsert failed: %v", result.RunID, err)
		}
	}
	if err := r.sidecar.Replace(result.News); err != nil {
		log.Printf("[RUNNER] run %s: sidecar write failed: %v", result.RunID, err)
	}

	result.Elapsed = time.Since(start)
	log.Printf("[RUNNER] run %s: %d processed, %d insufficient, %d errored in %s",
		result.RunID, len(result.Records), len(result.Insufficient), len(result.Errors),
		result.Elapsed.Round(time.Second))
	return result, nil
}
