package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

const alpacaDataURL = "https://data.alpaca.markets"

// alpacaTimeframes maps normalized interval tokens to Alpaca timeframes.
var alpacaTimeframes = map[string]string{
	"1m":  "1Min",
	"5m":  "5Min",
	"15m": "15Min",
	"30m": "30Min",
	"1h":  "1Hour",
	"1d":  "1Day",
	"1wk": "1Week",
}

// AlpacaProvider implements Provider using the Alpaca Market Data v2 API.
type AlpacaProvider struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
}

// AlpacaConfig holds configuration for the Alpaca backend.
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// NewAlpacaProvider creates a new Alpaca market data provider.
func NewAlpacaProvider(cfg AlpacaConfig) *AlpacaProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AlpacaProvider{
		client:    &http.Client{Timeout: timeout},
		baseURL:   alpacaDataURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
	}
}

func (p *AlpacaProvider) Name() string { return "alpaca" }

func (p *AlpacaProvider) get(ctx context.Context, symbol, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("APCA-API-KEY-ID", p.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", p.apiSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyTransport(p.Name(), symbol, err)
	}
	defer resp.Body.Close()

	if kind := classifyStatus(resp.StatusCode); kind != nil {
		return errors.NewProviderError(p.Name(), symbol, kind,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewProviderError(p.Name(), symbol, errors.ErrTransport,
			fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// alpacaBar matches the v2 stock bar payload.
type alpacaBar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

// GetBars fetches an OHLCV series from the v2 stock bars endpoint.
func (p *AlpacaProvider) GetBars(ctx context.Context, symbol, period, interval string) ([]models.Bar, error) {
	norm, err := ValidateInterval(interval)
	if err != nil {
		return nil, err
	}
	timeframe := alpacaTimeframes[norm]

	from, to, err := PeriodRange(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v2/stocks/%s/bars?timeframe=%s&start=%s&end=%s&limit=10000&adjustment=split",
		url.PathEscape(symbol), timeframe,
		from.Format(time.RFC3339), to.Format(time.RFC3339))

	var payload struct {
		Bars []alpacaBar `json:"bars"`
	}
	if err := p.get(ctx, symbol, path, &payload); err != nil {
		return nil, err
	}
	if len(payload.Bars) == 0 {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrEmptyData, nil)
	}

	bars := make([]models.Bar, len(payload.Bars))
	for i, b := range payload.Bars {
		bars[i] = models.Bar{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return bars, nil
}

// GetQuote combines the snapshot endpoint's latest quote, latest trade
// and daily bars into one normalized Quote.
func (p *AlpacaProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var snap struct {
		LatestTrade *struct {
			Price     float64   `json:"p"`
			Timestamp time.Time `json:"t"`
		} `json:"latestTrade"`
		LatestQuote *struct {
			BidPrice float64 `json:"bp"`
			BidSize  int64   `json:"bs"`
			AskPrice float64 `json:"ap"`
			AskSize  int64   `json:"as"`
		} `json:"latestQuote"`
		DailyBar     *alpacaBar `json:"dailyBar"`
		PrevDailyBar *alpacaBar `json:"prevDailyBar"`
	}

	path := fmt.Sprintf("/v2/stocks/%s/snapshot", url.PathEscape(symbol))
	if err := p.get(ctx, symbol, path, &snap); err != nil {
		return nil, err
	}
	if snap.LatestTrade == nil {
		return nil, errors.NewProviderError(p.Name(), symbol, errors.ErrEmptyData, nil)
	}

	q := models.Quote{
		Symbol:    symbol,
		Price:     snap.LatestTrade.Price,
		Timestamp: snap.LatestTrade.Timestamp,
	}
	if snap.LatestQuote != nil {
		q.Bid = snap.LatestQuote.BidPrice
		q.BidSize = snap.LatestQuote.BidSize
		q.Ask = snap.LatestQuote.AskPrice
		q.AskSize = snap.LatestQuote.AskSize
	}
	if snap.DailyBar != nil {
		q.Open = snap.DailyBar.Open
		q.High = snap.DailyBar.High
		q.Low = snap.DailyBar.Low
		q.Volume = snap.DailyBar.Volume
	}
	if snap.PrevDailyBar != nil {
		q.PrevClose = snap.PrevDailyBar.Close
	}

	q = q.WithChange()
	return &q, nil
}
