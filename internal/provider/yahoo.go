package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooProvider implements Provider using the Yahoo Finance chart API.
// No credentials are required.
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// YahooConfig holds configuration for the Yahoo backend.
type YahooConfig struct {
	ProxyURL string
	Timeout  time.Duration
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(cfg YahooConfig) *YahooProvider {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooProvider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: yahooBaseURL,
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
				RegularMarketTime    int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		p.baseURL, url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransport(p.Name(), symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(p.Name(), symbol, err)
	}

	if kind := classifyStatus(resp.StatusCode); kind != nil {
		return nil, errors.NewProviderError(p.Name(), symbol, kind,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrTransport,
			fmt.Errorf("decoding chart response: %w", err))
	}
	if chart.Chart.Error != nil {
		kind := errors.ErrTransport
		if chart.Chart.Error.Code == "Not Found" {
			kind = errors.ErrSymbolNotFound
		}
		return nil, errors.NewProviderError(p.Name(), symbol, kind,
			fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrEmptyData, nil)
	}

	return &chart, nil
}

// GetQuote fetches a quote from the chart meta of a 1-day range request.
func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	chart, err := p.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrEmptyData, nil)
	}

	bars, _ := p.barsFromChart(symbol, chart)
	var dayOpen float64
	if len(bars) > 0 {
		dayOpen = bars[0].Open
	}

	q := models.Quote{
		Symbol:    symbol,
		Price:     meta.RegularMarketPrice,
		Open:      dayOpen,
		High:      meta.RegularMarketDayHigh,
		Low:       meta.RegularMarketDayLow,
		PrevClose: meta.ChartPreviousClose,
		Volume:    meta.RegularMarketVolume,
		Timestamp: time.Unix(meta.RegularMarketTime, 0),
	}.WithChange()

	return &q, nil
}

// GetBars fetches an OHLCV series for the given period and interval tokens.
// Yahoo accepts the normalized period tokens natively as range parameters.
func (p *YahooProvider) GetBars(ctx context.Context, symbol, period, interval string) ([]models.Bar, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	yahooInterval, err := ValidateInterval(interval)
	if err != nil {
		return nil, err
	}

	chart, err := p.fetchChart(ctx, symbol, yahooInterval, period)
	if err != nil {
		return nil, err
	}

	return p.barsFromChart(symbol, chart)
}

func (p *YahooProvider) barsFromChart(symbol string, chart *yahooChart) ([]models.Bar, error) {
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrEmptyData, nil)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		var v int64
		if i < len(quote.Volume) {
			v = int64(toFloat(quote.Volume[i]))
		}
		bars = append(bars, models.Bar{
			Timestamp: time.Unix(ts, 0),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}

	if len(bars) == 0 {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrEmptyData, nil)
	}

	return bars, nil
}
