package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pattas/internal/ratelimit"
	"pattas/pkg/model"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooSearchURL  = "https://query2.finance.yahoo.com/v1/finance/search"
	yahooSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"

	yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// YahooProvider fetches daily history, news and fundamentals from the
// unofficial Yahoo Finance API. No API key needed.
type YahooProvider struct {
	client  *http.Client
	limiter *ratelimit.Limiter
}

// NewYahooProvider creates a new Yahoo Finance provider
func NewYahooProvider(rateLimit int) *YahooProvider {
	if rateLimit <= 0 {
		rateLimit = 30
	}
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: ratelimit.NewLimiter("yahoo", rateLimit),
	}
}

// Name returns the provider name
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// yahooChartResponse represents the Yahoo Finance chart API response
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetHistory fetches daily closes for the lookback window
func (p *YahooProvider) GetHistory(ctx context.Context, ticker string, days int) ([]model.PricePoint, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&includePrePost=false",
		yahooChartURL, ticker, start.Unix(), end.Unix())

	var data yahooChartResponse
	if err := p.get(ctx, url, &data); err != nil {
		return nil, err
	}

	if data.Chart.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", data.Chart.Error.Description), Retryable: false}
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no data available"), Retryable: false}
	}

	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no quote data"), Retryable: false}
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == 0 {
			continue // missing close for this session
		}
		points = append(points, model.PricePoint{
			Date:  time.Unix(ts, 0),
			Close: closes[i],
		})
	}
	return points, nil
}

// yahooSearchResponse wraps the news list of the search API
type yahooSearchResponse struct {
	News []RawNewsItem `json:"news"`
}

// GetNews fetches raw news items for a ticker. Items are returned as-is;
// shape normalization is the scorer's job.
func (p *YahooProvider) GetNews(ctx context.Context, ticker string) ([]RawNewsItem, error) {
	url := fmt.Sprintf("%s?q=%s&newsCount=20&quotesCount=0", yahooSearchURL, ticker)

	var data yahooSearchResponse
	if err := p.get(ctx, url, &data); err != nil {
		return nil, err
	}
	return data.News, nil
}

// yahooSummaryResponse carries the fundamentals modules we read
type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE struct {
					Raw float64 `json:"raw"`
				} `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				HeldPercentInsiders struct {
					Raw float64 `json:"raw"`
				} `json:"heldPercentInsiders"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetFundamentals fetches trailing P/E and insider holding percentage.
// heldPercentInsiders arrives as a 0-1 fraction and is scaled to 0-100.
func (p *YahooProvider) GetFundamentals(ctx context.Context, ticker string) (model.FundamentalSnapshot, error) {
	url := fmt.Sprintf("%s/%s?modules=summaryDetail%%2CdefaultKeyStatistics", yahooSummaryURL, ticker)

	var data yahooSummaryResponse
	if err := p.get(ctx, url, &data); err != nil {
		return model.FundamentalSnapshot{}, err
	}

	if data.QuoteSummary.Error != nil {
		return model.FundamentalSnapshot{}, &ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("%s", data.QuoteSummary.Error.Description),
		}
	}
	if len(data.QuoteSummary.Result) == 0 {
		return model.FundamentalSnapshot{}, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no summary data")}
	}

	r := data.QuoteSummary.Result[0]
	return model.FundamentalSnapshot{
		TrailingPE:      r.SummaryDetail.TrailingPE.Raw,
		HeldPctInsiders: r.DefaultKeyStatistics.HeldPercentInsiders.Raw * 100,
	}, nil
}

// get performs a rate-limited GET and decodes the JSON body into out
func (p *YahooProvider) get(ctx context.Context, url string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.SignalRateLimited()
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	p.limiter.ResetBackoff()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
