package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"pattas/internal/indicator"
	"pattas/internal/news"
	"pattas/internal/provider"
	"pattas/internal/signal"
	"pattas/pkg/model"
)

// ErrCalculation is returned when the latest indicator values come out
// undefined despite sufficient history.
var ErrCalculation = errors.New("indicator calculation failed")

// Result is the successful outcome for one ticker
type Result struct {
	Record model.DailySignalRecord
	News   []model.NewsItem
}

// Processor runs the per-ticker stages in order: history fetch with
// fallback, indicators, classification, fundamentals, sentiment. Failures
// in the first two stages fail the ticker; fundamentals and sentiment are
// best-effort.
type Processor struct {
	history      *provider.HistoryChain
	fundamentals provider.FundamentalsProvider
	scorer       *news.Scorer
	historyDays  int
	now          func() time.Time
}

// NewProcessor creates a ticker processor
func NewProcessor(history *provider.HistoryChain, fundamentals provider.FundamentalsProvider, scorer *news.Scorer, historyDays int) *Processor {
	if historyDays <= 0 {
		historyDays = 182
	}
	return &Processor{
		history:      history,
		fundamentals: fundamentals,
		scorer:       scorer,
		historyDays:  historyDays,
		now:          time.Now,
	}
}

// Process derives the daily signal record for one ticker
func (p *Processor) Process(ctx context.Context, ticker string) (*Result, error) {
	points, err := p.history.Fetch(ctx, ticker, p.historyDays)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, len(points))
	for i, pt := range points {
		closes[i] = pt.Close
	}

	rsiSeries := indicator.RSISeries(closes, indicator.DefaultRSIWindow)
	macdSeries, signalSeries := indicator.MACDSeries(closes,
		indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal)

	last := len(closes) - 1
	rsi := rsiSeries[last]
	macd := macdSeries[last]
	signalLine := signalSeries[last]

	if math.IsNaN(rsi) || math.IsNaN(macd) {
		return nil, fmt.Errorf("%w for %s: rsi=%v macd=%v", ErrCalculation, ticker, rsi, macd)
	}

	macdStatus, status := signal.Classify(rsi, macd, signalLine)

	// Fundamentals are best-effort; a failed fetch defaults both to 0
	var fund model.FundamentalSnapshot
	if snap, err := p.fundamentals.GetFundamentals(ctx, ticker); err != nil {
		log.Printf("[PIPELINE] %s: fundamentals unavailable: %v", ticker, err)
	} else {
		fund = snap
	}

	// Sentiment never fails the ticker; a nil score records as NULL
	score, items := p.scorer.Score(ctx, ticker)

	record := model.DailySignalRecord{
		TickerSymbol:    ticker,
		Date:            p.now().Format("2006-01-02"),
		Price:           model.Round2(points[last].Close),
		RSI:             model.Round2(rsi),
		MACDSignal:      macdStatus,
		SentimentScore:  score,
		Status:          status,
		HeldPctInsiders: model.Round2(fund.HeldPctInsiders),
		TrailingPE:      model.Round2(fund.TrailingPE),
	}

	return &Result{Record: record, News: items}, nil
}
