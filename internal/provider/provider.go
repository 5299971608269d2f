// Package provider fetches quotes and OHLCV series from upstream market
// data backends and normalizes responses and failures into one shape.
package provider

import (
	"context"
	"net/http"
	"time"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// Provider defines the interface for a market data backend. Exactly one
// configured backend serves every call; the adapter performs no retries
// and no failover; retry policy belongs to the caller.
type Provider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetBars(ctx context.Context, symbol, period, interval string) ([]models.Bar, error)
}

// periodRanges translates period tokens into concrete look-back durations.
// "max" is handled separately by each backend.
var periodRanges = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"5d":  5 * 24 * time.Hour,
	"1mo": 30 * 24 * time.Hour,
	"3mo": 91 * 24 * time.Hour,
	"6mo": 182 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
	"2y":  2 * 365 * 24 * time.Hour,
	"5y":  5 * 365 * 24 * time.Hour,
}

// intervalTokens is the set of supported interval tokens, normalized to
// Yahoo's spelling ("1w" is accepted as an alias of "1wk").
var intervalTokens = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "1h",
	"1d":  "1d",
	"1w":  "1wk",
	"1wk": "1wk",
}

// ValidatePeriod fails fast on an unknown period token.
func ValidatePeriod(period string) error {
	if period == "max" {
		return nil
	}
	if _, ok := periodRanges[period]; !ok {
		return errors.NewValidationError("period", period, "unknown period token")
	}
	return nil
}

// ValidateInterval normalizes an interval token, failing fast when unknown.
func ValidateInterval(interval string) (string, error) {
	norm, ok := intervalTokens[interval]
	if !ok {
		return "", errors.NewValidationError("interval", interval, "unknown interval token")
	}
	return norm, nil
}

// PeriodRange translates a period token into a [from, to] date range
// ending now. "max" maps to a 20-year look-back.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	if period == "max" {
		return now.AddDate(-20, 0, 0), now, nil
	}
	d, ok := periodRanges[period]
	if !ok {
		return time.Time{}, time.Time{}, errors.NewValidationError("period", period, "unknown period token")
	}
	return now.Add(-d), now, nil
}

// classifyStatus maps an upstream HTTP status onto the error taxonomy.
// A nil return means the status is not an error.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return errors.ErrRateLimited
	case status == http.StatusNotFound:
		return errors.ErrSymbolNotFound
	default:
		return errors.ErrTransport
	}
}

// classifyTransport wraps a network-level failure, distinguishing
// caller cancellation from a genuine transport error.
func classifyTransport(provider, symbol string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return errors.NewProviderError(provider, symbol, errors.ErrTransport, err)
}
