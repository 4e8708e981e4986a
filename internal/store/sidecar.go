package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"pattas/pkg/model"
)

// Sidecar persists the ticker -> news-item map as a JSON artifact next to
// the database. Each run fully rewrites the file for the tickers it
// processed; nothing is merged across runs.
type Sidecar struct {
	mu   sync.Mutex
	path string
}

// NewSidecar creates a sidecar store at path
func NewSidecar(path string) *Sidecar {
	return &Sidecar{path: path}
}

// Replace overwrites the sidecar file with this run's news map
func (s *Sidecar) Replace(news map[string][]model.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if news == nil {
		news = map[string][]model.NewsItem{}
	}
	data, err := json.MarshalIndent(news, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sidecar: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}
	return nil
}

// Load reads the sidecar left by a previous run. This is a compatibility
// path only, not authoritative state: older files mapped a ticker to a bare
// link string, which is lifted into a single-entry item list. A missing
// file yields an empty map.
func (s *Sidecar) Load() (map[string][]model.NewsItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]model.NewsItem{}, nil
		}
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing sidecar: %w", err)
	}

	news := make(map[string][]model.NewsItem, len(raw))
	for ticker, entry := range raw {
		var items []model.NewsItem
		if err := json.Unmarshal(entry, &items); err == nil {
			news[ticker] = items
			continue
		}
		var link string
		if err := json.Unmarshal(entry, &link); err == nil && link != "" {
			news[ticker] = []model.NewsItem{{Link: link}}
		}
	}
	return news, nil
}
