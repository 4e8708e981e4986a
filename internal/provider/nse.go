package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"pattas/internal/ratelimit"
	"pattas/internal/symbols"
	"pattas/pkg/model"
)

const (
	nseBaseURL    = "https://www.nseindia.com"
	nseHistoryURL = nseBaseURL + "/api/historical/cm/equity"
)

// NSEProvider fetches daily equity history from the NSE India API.
// The API requires a session cookie obtained from the landing page, so the
// client carries a cookie jar and bootstraps the session lazily.
type NSEProvider struct {
	client  *http.Client
	limiter *ratelimit.Limiter

	mu          sync.Mutex
	sessionedAt time.Time
}

// NewNSEProvider creates a new NSE provider
func NewNSEProvider(rateLimit int) *NSEProvider {
	if rateLimit <= 0 {
		rateLimit = 20
	}
	jar, _ := cookiejar.New(nil)
	return &NSEProvider{
		client:  &http.Client{Timeout: 30 * time.Second, Jar: jar},
		limiter: ratelimit.NewLimiter("nse", rateLimit),
	}
}

// Name returns the provider name
func (p *NSEProvider) Name() string {
	return "nse"
}

// nseHistoryResponse represents the NSE historical data response
type nseHistoryResponse struct {
	Data []struct {
		Timestamp    string  `json:"CH_TIMESTAMP"` // YYYY-MM-DD
		ClosingPrice float64 `json:"CH_CLOSING_PRICE"`
		Series       string  `json:"CH_SERIES"`
	} `json:"data"`
}

// GetHistory fetches daily closes for the EQ series over the lookback
// window. The exchange suffix is stripped; NSE expects the base symbol.
func (p *NSEProvider) GetHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := p.ensureSession(ctx); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	q := url.Values{}
	q.Set("symbol", symbols.Base(ticker))
	q.Set("series", `["EQ"]`)
	q.Set("from", start.Format("02-01-2006"))
	q.Set("to", end.Format("02-01-2006"))

	req, err := http.NewRequestWithContext(ctx, "GET", nseHistoryURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.SignalRateLimited()
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Session cookie expired; force a fresh bootstrap next call
		p.expireSession()
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("session rejected (status %d)", resp.StatusCode), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	p.limiter.ResetBackoff()

	var data nseHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	points := make([]model.PricePoint, 0, len(data.Data))
	for _, row := range data.Data {
		date, err := time.Parse("2006-01-02", row.Timestamp)
		if err != nil {
			continue
		}
		points = append(points, model.PricePoint{
			Date:  date,
			Close: row.ClosingPrice,
		})
	}
	return points, nil
}

// ensureSession fetches the landing page to obtain session cookies.
// Sessions are reused for a few minutes before re-bootstrapping.
func (p *NSEProvider) ensureSession(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.sessionedAt) < 5*time.Minute {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", nseBaseURL, nil)
	if err != nil {
		return fmt.Errorf("creating session request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("session bootstrap: %w", err), Retryable: true}
	}
	resp.Body.Close()

	p.sessionedAt = time.Now()
	return nil
}

func (p *NSEProvider) expireSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionedAt = time.Time{}
}

func (p *NSEProvider) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json, text/html")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", nseBaseURL)
}
