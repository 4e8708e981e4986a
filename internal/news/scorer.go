package news

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"pattas/internal/provider"
	"pattas/internal/symbols"
	"pattas/pkg/model"
)

const (
	fallbackPublisher = "Google News Search"
	fallbackSummary   = "No recent coverage found. Follow the link to search for the latest news."
	noSummary         = "No summary available."
)

// Scorer derives a sentiment score and a short news-item list for a ticker.
// The score is the mean per-item polarity scaled to [-100, 100]; nil means
// the fetch failed outright, 0.0 means no item had analyzable text.
type Scorer struct {
	news     provider.NewsProvider
	analyzer Analyzer
	maxItems int
	now      func() time.Time
}

// NewScorer creates a sentiment scorer keeping up to maxItems sidecar
// entries per ticker
func NewScorer(np provider.NewsProvider, analyzer Analyzer, maxItems int) *Scorer {
	if maxItems <= 0 {
		maxItems = 5
	}
	return &Scorer{
		news:     np,
		analyzer: analyzer,
		maxItems: maxItems,
		now:      time.Now,
	}
}

// Score fetches and scores news for the ticker. It never returns an error:
// a total fetch failure is logged and yields a nil score with the
// synthesized fallback item, so one ticker's news outage cannot abort the
// batch.
func (s *Scorer) Score(ctx context.Context, ticker string) (*float64, []model.NewsItem) {
	raw, err := s.fetch(ctx, ticker)
	if err != nil {
		log.Printf("[NEWS] %s: fetch failed: %v", ticker, err)
		return nil, []model.NewsItem{s.fallbackItem(ticker)}
	}

	items := make([]model.NewsItem, 0, s.maxItems)
	var polarities []float64

	for _, r := range raw {
		item, text := s.normalize(r)

		// Sidecar keeps the first maxItems entries with a resolved link
		if item.Link != "" && len(items) < s.maxItems {
			items = append(items, item)
		}

		// Sentiment runs over every item with analyzable text
		if text != "" {
			polarities = append(polarities, s.analyzer.Polarity(text))
		}
	}

	score := 0.0
	if len(polarities) > 0 {
		var sum float64
		for _, p := range polarities {
			sum += p
		}
		score = model.Round2(sum / float64(len(polarities)) * 100)
	}

	if len(items) == 0 {
		// Nothing resolvable: synthesize one search link. The fallback item
		// never contributes to the score.
		items = []model.NewsItem{s.fallbackItem(ticker)}
	}

	return &score, items
}

// fetch tries the ticker as-is, then retries once on the alternate-market
// suffix when the primary-market feed comes back empty or broken.
func (s *Scorer) fetch(ctx context.Context, ticker string) ([]provider.RawNewsItem, error) {
	raw, err := s.news.GetNews(ctx, ticker)
	if (err != nil || len(raw) == 0) && symbols.IsBSE(ticker) {
		alt := symbols.ToNSE(ticker)
		altRaw, altErr := s.news.GetNews(ctx, alt)
		if altErr != nil {
			if err != nil {
				return nil, fmt.Errorf("%s: %w (alternate %s: %v)", ticker, err, alt, altErr)
			}
			return nil, fmt.Errorf("alternate %s: %w", alt, altErr)
		}
		return altRaw, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// normalize flattens a raw item into a NewsItem plus the text candidate for
// sentiment. Fields are read from the top level or, when absent, from one
// level under "content". The returned text is empty when the item has
// nothing analyzable.
func (s *Scorer) normalize(raw provider.RawNewsItem) (model.NewsItem, string) {
	content, _ := raw["content"].(map[string]any)

	title := stringField(raw, content, "title")
	link := resolveLink(raw, content)
	summary := stringField(raw, content, "summary")
	if summary == "" {
		summary = stringField(raw, content, "description")
	}

	text := title
	if summary != "" {
		if text != "" {
			text += ". " + summary
		} else {
			text = summary
		}
	}
	if summary == "" {
		summary = noSummary
	}

	item := model.NewsItem{
		Title:     title,
		Link:      link,
		Publisher: resolvePublisher(raw, content),
		Time:      s.resolveTime(raw, content),
		Summary:   summary,
	}
	return item, text
}

// resolveLink applies the link precedence: a direct link field, then a
// click-through URL object, then a canonical URL object.
func resolveLink(raw, content map[string]any) string {
	if link := stringField(raw, content, "link"); link != "" {
		return link
	}
	if u := urlField(raw, content, "clickThroughUrl"); u != "" {
		return u
	}
	return urlField(raw, content, "canonicalUrl")
}

func resolvePublisher(raw, content map[string]any) string {
	if p := stringField(raw, content, "publisher"); p != "" {
		return p
	}
	for _, m := range []map[string]any{raw, content} {
		if prov, ok := m["provider"].(map[string]any); ok {
			if name, ok := prov["displayName"].(string); ok && name != "" {
				return name
			}
		}
	}
	return ""
}

// resolveTime prefers the explicit publish date, then the provider epoch
// timestamp, then the current time as last resort.
func (s *Scorer) resolveTime(raw, content map[string]any) time.Time {
	if d := stringField(raw, content, "pubDate"); d != "" {
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t
		}
	}
	for _, m := range []map[string]any{raw, content} {
		if v, ok := m["providerPublishTime"]; ok {
			if epoch, ok := toInt64(v); ok && epoch > 0 {
				return time.Unix(epoch, 0)
			}
		}
	}
	return s.now()
}

// fallbackItem synthesizes a single search-link entry for a ticker with no
// resolvable news
func (s *Scorer) fallbackItem(ticker string) model.NewsItem {
	base := symbols.Base(ticker)
	return model.NewsItem{
		Title:     fmt.Sprintf("Latest news for %s", base),
		Link:      "https://www.google.com/search?q=" + url.QueryEscape(base+" share news") + "&tbm=nws",
		Publisher: fallbackPublisher,
		Time:      s.now(),
		Summary:   fallbackSummary,
	}
}

// stringField reads a string field from the top level, falling back to the
// nested content map
func stringField(raw, content map[string]any, key string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	if content != nil {
		if v, ok := content[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// urlField reads the url member of a nested URL object, top level first
func urlField(raw, content map[string]any, key string) string {
	for _, m := range []map[string]any{raw, content} {
		if m == nil {
			continue
		}
		if obj, ok := m[key].(map[string]any); ok {
			if u, ok := obj["url"].(string); ok && u != "" {
				return u
			}
		}
	}
	return ""
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
