package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"market-mention-bot/internal/api"
	"market-mention-bot/internal/logger"
	"market-mention-bot/internal/types"
)

const (
	chartURL  = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1y&interval=1d"
	quoteURL  = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=summaryProfile,summaryDetail,price"
	searchURL = "https://query1.finance.yahoo.com/v1/finance/search?q=%s&quotesCount=1&newsCount=0"
)

// Client fetches quotes, fundamentals and company names from the public
// market data endpoints. Requests are throttled with a token bucket and the
// derived technicals are cached briefly so a burst of mentions for one
// ticker costs a single upstream call.
type Client struct {
	http    *api.Client
	limiter *rate.Limiter

	cacheTTL time.Duration
	mu       sync.Mutex
	cache    map[string]cachedTechnicals
	now      func() time.Time
}

type cachedTechnicals struct {
	at time.Time
	t  types.Technicals
}

// NewClient builds a market data client. cacheTTL bounds how stale a served
// technicals snapshot may be.
func NewClient(timeout, cacheTTL time.Duration) *Client {
	return &Client{
		http: api.NewClient(
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		// Two quick calls, then one every 500ms.
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		cacheTTL: cacheTTL,
		cache:    make(map[string]cachedTechnicals),
		now:      time.Now,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"summaryProfile"`
			SummaryDetail struct {
				MarketCap     rawValue `json:"marketCap"`
				TrailingPE    rawValue `json:"trailingPE"`
				DividendYield rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

type searchResponse struct {
	Quotes []struct {
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Symbol    string `json:"symbol"`
	} `json:"quotes"`
}

// Candles fetches one year of daily bars for the ticker, oldest first.
func (c *Client) Candles(ctx context.Context, ticker string) ([]types.Candle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.GET(ctx, fmt.Sprintf(chartURL, url.PathEscape(ticker)), api.YahooFinanceHeaders())
	if err != nil {
		return nil, fmt.Errorf("chart request for %s failed: %w", ticker, err)
	}
	var parsed chartResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, err
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", ticker, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]types.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		candles = append(candles, types.Candle{
			Ts:    ts,
			Open:  at(quote.Open, i),
			High:  at(quote.High, i),
			Low:   at(quote.Low, i),
			Close: quote.Close[i],
			Vol:   at(quote.Volume, i),
		})
	}
	return candles, nil
}

// Technicals returns the derived indicator snapshot, serving a cached one
// when fresh enough.
func (c *Client) Technicals(ctx context.Context, ticker string) (types.Technicals, error) {
	key := strings.ToUpper(ticker)

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && c.now().Sub(entry.at) < c.cacheTTL {
		c.mu.Unlock()
		return entry.t, nil
	}
	c.mu.Unlock()

	candles, err := c.Candles(ctx, ticker)
	if err != nil {
		return types.Technicals{}, err
	}
	t := BuildTechnicals(candles, c.now())

	c.mu.Lock()
	c.cache[key] = cachedTechnicals{at: c.now(), t: t}
	c.mu.Unlock()
	return t, nil
}

// Fundamentals fetches the fundamentals snapshot for the ticker. Missing
// fields read as zero values.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (types.Fundamentals, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return types.Fundamentals{}, err
	}
	resp, err := c.http.GET(ctx, fmt.Sprintf(quoteURL, url.PathEscape(ticker)), api.YahooFinanceHeaders())
	if err != nil {
		return types.Fundamentals{}, fmt.Errorf("quote summary for %s failed: %w", ticker, err)
	}
	var parsed quoteSummaryResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return types.Fundamentals{}, err
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return types.Fundamentals{}, fmt.Errorf("no fundamentals for %s", ticker)
	}

	r := parsed.QuoteSummary.Result[0]
	return types.Fundamentals{
		MarketCap:     r.SummaryDetail.MarketCap.Raw,
		PERatio:       r.SummaryDetail.TrailingPE.Raw,
		DividendYield: r.SummaryDetail.DividendYield.Raw,
		Sector:        r.SummaryProfile.Sector,
		Industry:      r.SummaryProfile.Industry,
	}, nil
}

// CompanyName resolves a ticker to a display name, with corporate suffixes
// stripped. Falls back to the ticker itself when the lookup finds nothing.
func (c *Client) CompanyName(ctx context.Context, ticker string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := c.http.GET(ctx, fmt.Sprintf(searchURL, url.QueryEscape(ticker)), api.YahooFinanceHeaders())
	if err != nil {
		return "", fmt.Errorf("symbol search for %s failed: %w", ticker, err)
	}
	var parsed searchResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Quotes) == 0 {
		logger.Debug(ctx, "No search result for ticker", "ticker", ticker)
		return strings.ToUpper(ticker), nil
	}

	name := parsed.Quotes[0].LongName
	if name == "" {
		name = parsed.Quotes[0].ShortName
	}
	if name == "" {
		return strings.ToUpper(ticker), nil
	}
	return StripCorpSuffix(name), nil
}

// StripCorpSuffix removes trailing corporate designators from a company name.
func StripCorpSuffix(name string) string {
	for _, suffix := range []string{" Inc.", " Inc", " Corporation", " Corp"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
