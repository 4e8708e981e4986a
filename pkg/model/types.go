package model

import (
	"math"
	"time"
)

// MACD status values as stored in the daily_signals table
const (
	MACDBullish = "Bullish Crossover"
	MACDBearish = "Bearish Crossover"
	MACDNeutral = "Neutral"
)

// Trading status values
const (
	StatusBuy  = "BUY"
	StatusSell = "SELL"
	StatusHold = "HOLD"
)

// PricePoint represents a single daily closing price
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// WatchedStock is a row of the pattas_list watch-list table
type WatchedStock struct {
	TickerSymbol string `gorm:"column:ticker_symbol;primaryKey" json:"ticker_symbol"`
	CompanyName  string `gorm:"column:company_name" json:"company_name"`
}

// TableName maps WatchedStock to the pattas_list table
func (WatchedStock) TableName() string { return "pattas_list" }

// TechnicalSignal holds the latest indicator values and their interpretation
type TechnicalSignal struct {
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	SignalLine float64 `json:"signal_line"`
	MACDStatus string  `json:"macd_status"`
	Status     string  `json:"status"`
}

// FundamentalSnapshot holds best-effort fundamental data.
// Both fields default to 0 when the provider fails.
type FundamentalSnapshot struct {
	TrailingPE      float64 `json:"trailing_pe"`
	HeldPctInsiders float64 `json:"held_pct_insiders"` // percent, 0-100
}

// NewsItem is one normalized news entry for the sidecar
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Publisher string    `json:"publisher"`
	Time      time.Time `json:"time"`
	Summary   string    `json:"summary"`
}

// DailySignalRecord is the unit of persistence, one row per ticker per day.
// A later run for the same (ticker, date) replaces the prior row.
type DailySignalRecord struct {
	TickerSymbol    string   `gorm:"column:ticker_symbol;primaryKey" json:"ticker_symbol"`
	Date            string   `gorm:"column:date;primaryKey" json:"date"` // YYYY-MM-DD
	Price           float64  `gorm:"column:price" json:"price"`
	RSI             float64  `gorm:"column:rsi" json:"rsi"`
	MACDSignal      string   `gorm:"column:macd_signal" json:"macd_signal"`
	SentimentScore  *float64 `gorm:"column:sentiment_score" json:"sentiment_score"`
	Status          string   `gorm:"column:status" json:"status"`
	HeldPctInsiders float64  `gorm:"column:held_pct_insiders" json:"held_pct_insiders"`
	TrailingPE      float64  `gorm:"column:trailing_pe" json:"trailing_pe"`
}

// TableName maps DailySignalRecord to the daily_signals table
func (DailySignalRecord) TableName() string { return "daily_signals" }

// TickerError records a per-ticker failure without aborting the batch
type TickerError struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// RunResult is the outcome of one batch run
type RunResult struct {
	RunID        string                `json:"run_id"`
	Date         string                `json:"date"`
	Records      []DailySignalRecord   `json:"records"`
	News         map[string][]NewsItem `json:"news"`
	Insufficient []string              `json:"insufficient"`
	Errors       []TickerError         `json:"errors"`
	Elapsed      time.Duration         `json:"elapsed"`
}

// Round2 rounds to two decimal places, the precision of persisted values
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
