package store

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"pattas/internal/symbols"
	"pattas/pkg/model"
)

// Store wraps the SQLite database carrying the pattas_list watch-list and
// the daily_signals table. The schema is owned by the seeding scripts; the
// store only reads and upserts.
type Store struct {
	db *gorm.DB
}

// Open opens the SQLite database at path
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db}, nil
}

// Tickers returns the watch-list ticker symbols, normalized. Hand-seeded
// rows occasionally carry stray whitespace or lowercase suffixes.
func (s *Store) Tickers(ctx context.Context) ([]string, error) {
	var rows []model.WatchedStock
	if err := s.db.WithContext(ctx).Order("ticker_symbol").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading watch-list: %w", err)
	}

	tickers := make([]string, len(rows))
	for i, row := range rows {
		tickers[i] = symbols.Normalize(row.TickerSymbol)
	}
	return tickers, nil
}

// UpsertDailySignals writes records in bulk, replacing any existing row
// with the same (ticker_symbol, date) key.
func (s *Store) UpsertDailySignals(ctx context.Context, records []model.DailySignalRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker_symbol"}, {Name: "date"}},
		UpdateAll: true,
	}).CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("upserting daily signals: %w", err)
	}
	return nil
}

// SignalsForDate returns all persisted records for a calendar date
func (s *Store) SignalsForDate(ctx context.Context, date string) ([]model.DailySignalRecord, error) {
	var rows []model.DailySignalRecord
	if err := s.db.WithContext(ctx).Where("date = ?", date).Order("ticker_symbol").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading daily signals: %w", err)
	}
	return rows, nil
}
