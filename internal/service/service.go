// Package service exposes the analytics operations. Each operation
// validates its parameters up front, pulls market data through the
// provider, and delegates to the analysis packages. Provider errors
// pass through to the caller untouched.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stock-analyst/internal/analysis"
	"stock-analyst/internal/analysis/indicators"
	"stock-analyst/internal/analysis/patterns"
	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
	"stock-analyst/internal/options"
	"stock-analyst/internal/provider"
)

// expiryLayout is the accepted expiration date format.
const expiryLayout = "2006-01-02"

// defaultWatchlist is scanned when no symbol is given to the
// unusual-options scan.
var defaultWatchlist = []string{"AAPL", "AMZN", "GOOGL", "META", "MSFT", "NVDA", "SPY", "TSLA"}

// Service wires the provider and the analysis engines behind the
// public operations.
type Service struct {
	provider provider.Provider
	engine   *indicators.Engine
	detector *patterns.Detector
	levels   *patterns.LevelFinder
	synth    *options.Synthesizer
	model    options.ModelConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// New builds a Service on top of a provider.
func New(p provider.Provider, synth *options.Synthesizer, model options.ModelConfig, logger zerolog.Logger) *Service {
	return &Service{
		provider: p,
		engine:   indicators.NewEngine(),
		detector: patterns.NewDetector(),
		levels:   patterns.NewLevelFinder(),
		synth:    synth,
		model:    model,
		logger:   logger,
		now:      time.Now,
	}
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", errors.NewValidationError("symbol", symbol, "must not be empty")
	}
	return symbol, nil
}

// GetQuote returns the current quote for a symbol.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return s.provider.GetQuote(ctx, symbol)
}

// History bundles an OHLCV series with its derived summary.
type History struct {
	Bars    []models.Bar
	Summary models.SeriesSummary
}

// GetHistory fetches a historical series and summarizes it.
func (s *Service) GetHistory(ctx context.Context, symbol, period, interval string) (*History, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	bars, err := s.provider.GetBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	return &History{Bars: bars, Summary: models.Summarize(symbol, bars)}, nil
}

// IndicatorReport holds the per-indicator results and the aggregate
// recommendation derived from their signals.
type IndicatorReport struct {
	Symbol    string
	Results   []indicators.Result
	Aggregate indicators.Aggregate
}

// ComputeIndicators evaluates the named indicators over a daily series
// for the period. Unknown names and too-short series fail before any
// computation runs. Empty names means the full catalogue.
func (s *Service) ComputeIndicators(ctx context.Context, symbol string, names []string, period string) (*IndicatorReport, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = s.engine.Names()
	}

	bars, err := s.provider.GetBars(ctx, symbol, period, "1d")
	if err != nil {
		return nil, err
	}

	results, err := s.engine.ComputeSelected(names, bars)
	if err != nil {
		return nil, err
	}

	report := &IndicatorReport{
		Symbol:    symbol,
		Results:   results,
		Aggregate: indicators.Aggregated(results),
	}
	s.logger.Debug().
		Str("symbol", symbol).
		Int("indicators", len(results)).
		Str("recommendation", string(report.Aggregate.Recommendation)).
		Msg("computed indicators")
	return report, nil
}

// DetectPatterns scans a daily series for the requested chart patterns.
// Empty types means all supported patterns.
func (s *Service) DetectPatterns(ctx context.Context, symbol string, types []analysis.PatternType, period string) ([]analysis.Pattern, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	bars, err := s.provider.GetBars(ctx, symbol, period, "1d")
	if err != nil {
		return nil, err
	}
	return s.detector.Detect(bars, types)
}

// FindLevels clusters the series highs and lows into support and
// resistance levels. Sensitivity is the minimum touch count, 1 to 10.
func (s *Service) FindLevels(ctx context.Context, symbol, period string, sensitivity int) (*patterns.LevelsResult, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	bars, err := s.provider.GetBars(ctx, symbol, period, "1d")
	if err != nil {
		return nil, err
	}
	return s.levels.Find(bars, sensitivity)
}

func parseExpiry(expiry string, now time.Time) (time.Time, error) {
	t, err := time.Parse(expiryLayout, expiry)
	if err != nil {
		return time.Time{}, errors.NewValidationError("expiration", expiry, "must be YYYY-MM-DD")
	}
	if !t.After(now) {
		return time.Time{}, errors.NewValidationError("expiration", expiry, "must be in the future")
	}
	return t, nil
}

// PriceOption prices a single contract off the live quote.
func (s *Service) PriceOption(ctx context.Context, symbol string, strike float64, expiry string, kind models.OptionType) (*models.OptionQuote, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if strike <= 0 {
		return nil, errors.NewValidationError("strike", strike, "must be positive")
	}
	now := s.now()
	exp, err := parseExpiry(expiry, now)
	if err != nil {
		return nil, err
	}

	quote, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return options.Quote(s.model, symbol, quote.Price, strike, exp, kind, now)
}

// GetOptionsChain synthesizes an options chain off the live quote.
// expiry is optional; empty uses a standard ladder of expirations.
// kind restricts to CALL or PUT; empty means both.
func (s *Service) GetOptionsChain(ctx context.Context, symbol, expiry string, kind models.OptionType, moneyness models.Moneyness) (*models.OptionsChain, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var exp time.Time
	if expiry != "" {
		if exp, err = parseExpiry(expiry, s.now()); err != nil {
			return nil, err
		}
	}

	quote, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return s.synth.Chain(symbol, quote.Price, exp, kind, moneyness)
}

// ScanUnusualOptions scans for contracts with volume running well
// ahead of open interest. With no symbols it covers the default
// watchlist; symbols whose quote lookup fails abort the scan with the
// provider's error.
func (s *Service) ScanUnusualOptions(ctx context.Context, symbols []string, minVolumeRatio, minPremium float64) ([]models.UnusualContract, error) {
	if len(symbols) == 0 {
		symbols = defaultWatchlist
	}

	spots := make(map[string]float64, len(symbols))
	for _, raw := range symbols {
		symbol, err := normalizeSymbol(raw)
		if err != nil {
			return nil, err
		}
		quote, err := s.provider.GetQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		spots[symbol] = quote.Price
	}

	return s.synth.ScanUnusual(spots, minVolumeRatio, minPremium)
}
