package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig `yaml:"database"`
	Sidecar   SidecarConfig  `yaml:"sidecar"`
	Batch     BatchConfig    `yaml:"batch"`
	Providers APIConfig      `yaml:"providers"`
}

// DatabaseConfig holds the SQLite store settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SidecarConfig holds the news-link sidecar settings
type SidecarConfig struct {
	Path       string `yaml:"path"`
	LoadLegacy bool   `yaml:"load_legacy"` // read prior file at startup (compat only)
}

// BatchConfig holds the daily batch settings
type BatchConfig struct {
	Pause        time.Duration `yaml:"pause"`          // pause between tickers
	MinPoints    int           `yaml:"min_points"`     // minimum history points for indicators
	HistoryDays  int           `yaml:"history_days"`   // lookback window for price history
	MaxNewsItems int           `yaml:"max_news_items"` // sidecar entries kept per ticker
	Schedule     string        `yaml:"schedule"`       // cron expression for daemon mode
}

// APIConfig holds data provider configurations
type APIConfig struct {
	NSE   ProviderConfig `yaml:"nse"`
	Yahoo ProviderConfig `yaml:"yahoo"`
}

// ProviderConfig holds individual provider settings
type ProviderConfig struct {
	RateLimit int `yaml:"rate_limit"` // requests per minute
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "pattas_list.db",
		},
		Sidecar: SidecarConfig{
			Path: "news_links.json",
		},
		Batch: BatchConfig{
			Pause:        time.Second,
			MinPoints:    30,
			HistoryDays:  182, // ~6 months
			MaxNewsItems: 5,
			Schedule:     "30 18 * * 1-5", // after market close, weekdays
		},
		Providers: APIConfig{
			NSE:   ProviderConfig{RateLimit: 20},
			Yahoo: ProviderConfig{RateLimit: 30},
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if p := os.Getenv("PATTAS_DB"); p != "" {
		cfg.Database.Path = p
	}
	if p := os.Getenv("PATTAS_SIDECAR"); p != "" {
		cfg.Sidecar.Path = p
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Sidecar.Path == "" {
		return fmt.Errorf("sidecar path is required")
	}
	if c.Batch.MinPoints < 1 {
		return fmt.Errorf("min_points must be at least 1")
	}
	if c.Batch.MaxNewsItems < 1 {
		return fmt.Errorf("max_news_items must be at least 1")
	}
	if c.Batch.Pause < 0 {
		return fmt.Errorf("pause must not be negative")
	}
	return nil
}
