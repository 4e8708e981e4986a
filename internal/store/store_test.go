package store

import (
	"context"
	"path/filepath"
	"testing"

	"pattas/pkg/model"
)

// openTestStore opens a fresh database with the schema the seeding scripts
// normally create
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "pattas_list.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ddl := []string{
		`CREATE TABLE pattas_list (
			ticker_symbol TEXT PRIMARY KEY,
			company_name TEXT
		)`,
		`CREATE TABLE daily_signals (
			ticker_symbol TEXT,
			date TEXT,
			price REAL,
			rsi REAL,
			macd_signal TEXT,
			sentiment_score REAL,
			status TEXT,
			held_pct_insiders REAL,
			trailing_pe REAL,
			PRIMARY KEY (ticker_symbol, date)
		)`,
	}
	for _, stmt := range ddl {
		if err := s.db.Exec(stmt).Error; err != nil {
			t.Fatalf("Schema setup failed: %v", err)
		}
	}
	return s
}

func TestTickers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seed := []model.WatchedStock{
		{TickerSymbol: "TCS.BO", CompanyName: "Tata Consultancy Services"},
		{TickerSymbol: "RELIANCE.BO", CompanyName: "Reliance Industries"},
	}
	if err := s.db.Create(&seed).Error; err != nil {
		t.Fatal(err)
	}

	tickers, err := s.Tickers(ctx)
	if err != nil {
		t.Fatalf("Tickers failed: %v", err)
	}
	if len(tickers) != 2 {
		t.Fatalf("Expected 2 tickers, got %d", len(tickers))
	}
	if tickers[0] != "RELIANCE.BO" || tickers[1] != "TCS.BO" {
		t.Errorf("Tickers not ordered: %v", tickers)
	}
}

func TestTickersNormalizesSeededRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Hand-seeded rows with stray whitespace and lowercase suffixes
	seed := []model.WatchedStock{
		{TickerSymbol: " tcs.bo ", CompanyName: "Tata Consultancy Services"},
	}
	if err := s.db.Create(&seed).Error; err != nil {
		t.Fatal(err)
	}

	tickers, err := s.Tickers(ctx)
	if err != nil {
		t.Fatalf("Tickers failed: %v", err)
	}
	if len(tickers) != 1 || tickers[0] != "TCS.BO" {
		t.Errorf("Expected normalized [TCS.BO], got %v", tickers)
	}
}

func TestUpsertDailySignalsReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	score := 12.5
	rec := model.DailySignalRecord{
		TickerSymbol:    "TCS.BO",
		Date:            "2026-09-01",
		Price:           4120.55,
		RSI:             61.2,
		MACDSignal:      model.MACDBullish,
		SentimentScore:  &score,
		Status:          model.StatusBuy,
		HeldPctInsiders: 72.3,
		TrailingPE:      29.8,
	}
	if err := s.UpsertDailySignals(ctx, []model.DailySignalRecord{rec}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	// Same key, new values: the row is replaced, not duplicated
	rec.Price = 4150.10
	rec.Status = model.StatusHold
	if err := s.UpsertDailySignals(ctx, []model.DailySignalRecord{rec}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	rows, err := s.SignalsForDate(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("SignalsForDate failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row after re-upsert, got %d", len(rows))
	}
	if rows[0].Price != 4150.10 || rows[0].Status != model.StatusHold {
		t.Errorf("Row not replaced: %+v", rows[0])
	}
	if rows[0].SentimentScore == nil || *rows[0].SentimentScore != 12.5 {
		t.Errorf("SentimentScore = %v", rows[0].SentimentScore)
	}
}

func TestUpsertNilSentimentPersistsAsNull(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := model.DailySignalRecord{
		TickerSymbol: "NONEWS.BO",
		Date:         "2026-09-01",
		Price:        100,
		RSI:          55,
		MACDSignal:   model.MACDNeutral,
		Status:       model.StatusHold,
	}
	if err := s.UpsertDailySignals(ctx, []model.DailySignalRecord{rec}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rows, err := s.SignalsForDate(ctx, "2026-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].SentimentScore != nil {
		t.Errorf("Expected NULL sentiment, got %v", *rows[0].SentimentScore)
	}
}

func TestUpsertEmptyBatch(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertDailySignals(context.Background(), nil); err != nil {
		t.Errorf("Empty batch should be a no-op: %v", err)
	}
}
