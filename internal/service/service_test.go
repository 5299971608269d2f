package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analyst/internal/analysis"
	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
	"stock-analyst/internal/options"
)

type stubProvider struct {
	quote    *models.Quote
	bars     []models.Bar
	quoteErr error
	barsErr  error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	q := *s.quote
	q.Symbol = symbol
	return &q, nil
}

func (s *stubProvider) GetBars(_ context.Context, _, _, _ string) ([]models.Bar, error) {
	if s.barsErr != nil {
		return nil, s.barsErr
	}
	return s.bars, nil
}

func flatBars(n int, price float64) []models.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	return bars
}

func newTestService(p *stubProvider) *Service {
	model := options.DefaultModelConfig()
	synth := options.NewSynthesizer(model, rand.New(rand.NewSource(1)))
	svc := New(p, synth, model, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestGetQuoteNormalizesSymbol(t *testing.T) {
	p := &stubProvider{quote: &models.Quote{Price: 187.50}}
	svc := newTestService(p)

	q, err := svc.GetQuote(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
}

func TestGetQuoteRejectsEmptySymbol(t *testing.T) {
	svc := newTestService(&stubProvider{quote: &models.Quote{Price: 1}})

	_, err := svc.GetQuote(context.Background(), "   ")
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestProviderErrorsPassThrough(t *testing.T) {
	provErr := errors.NewProviderError("stub", "AAPL", errors.ErrRateLimited, nil)
	svc := newTestService(&stubProvider{quoteErr: provErr, barsErr: provErr})

	_, err := svc.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, errors.ErrRateLimited)

	_, err = svc.GetHistory(context.Background(), "AAPL", "1mo", "1d")
	assert.ErrorIs(t, err, errors.ErrRateLimited)

	_, err = svc.ComputeIndicators(context.Background(), "AAPL", []string{"rsi"}, "1mo")
	assert.ErrorIs(t, err, errors.ErrRateLimited)
}

func TestGetHistorySummarizes(t *testing.T) {
	p := &stubProvider{bars: flatBars(5, 100)}
	svc := newTestService(p)

	h, err := svc.GetHistory(context.Background(), "AAPL", "1mo", "1d")
	require.NoError(t, err)
	assert.Len(t, h.Bars, 5)
	assert.Equal(t, 100.0, h.Summary.HighestClose)
	assert.Equal(t, int64(5000), h.Summary.TotalVolume)
}

func TestComputeIndicatorsFlatSeries(t *testing.T) {
	p := &stubProvider{bars: flatBars(30, 100)}
	svc := newTestService(p)

	report, err := svc.ComputeIndicators(context.Background(), "AAPL", []string{"rsi", "sma"}, "3mo")
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	byName := make(map[string]float64)
	signals := make(map[string]analysis.Signal)
	for _, r := range report.Results {
		byName[r.Name] = r.Value
		signals[r.Name] = r.Signal
	}

	// No gains and no losses pins RSI at the midpoint.
	assert.InDelta(t, 50.0, byName["rsi"], 1e-9)
	assert.Equal(t, analysis.SignalNeutral, signals["rsi"])

	// Close equals the average, so the strict comparison reads SELL.
	assert.InDelta(t, 100.0, byName["sma"], 1e-9)
	assert.Equal(t, analysis.SignalSell, signals["sma"])
}

func TestComputeIndicatorsUnknownName(t *testing.T) {
	p := &stubProvider{bars: flatBars(30, 100)}
	svc := newTestService(p)

	_, err := svc.ComputeIndicators(context.Background(), "AAPL", []string{"supertrend"}, "1mo")
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestComputeIndicatorsShortSeries(t *testing.T) {
	p := &stubProvider{bars: flatBars(5, 100)}
	svc := newTestService(p)

	_, err := svc.ComputeIndicators(context.Background(), "AAPL", []string{"rsi"}, "5d")
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestComputeIndicatorsDefaultsToCatalogue(t *testing.T) {
	p := &stubProvider{bars: flatBars(60, 100)}
	svc := newTestService(p)

	report, err := svc.ComputeIndicators(context.Background(), "AAPL", nil, "3mo")
	require.NoError(t, err)
	assert.Len(t, report.Results, 10)
}

func TestFindLevelsFlatSeries(t *testing.T) {
	p := &stubProvider{bars: flatBars(100, 100)}
	svc := newTestService(p)

	res, err := svc.FindLevels(context.Background(), "AAPL", "6mo", 10)
	require.NoError(t, err)
	require.Len(t, res.Levels, 1)

	lvl := res.Levels[0]
	assert.InDelta(t, 100.0, lvl.Price, 1e-9)
	assert.Equal(t, 200, lvl.TouchCount)
	assert.Equal(t, 1.0, lvl.Strength)
}

func TestFindLevelsRejectsBadSensitivity(t *testing.T) {
	p := &stubProvider{bars: flatBars(100, 100)}
	svc := newTestService(p)

	_, err := svc.FindLevels(context.Background(), "AAPL", "6mo", 11)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestPriceOption(t *testing.T) {
	p := &stubProvider{quote: &models.Quote{Price: 150}}
	svc := newTestService(p)

	q, err := svc.PriceOption(context.Background(), "AAPL", 150, "2024-07-03", models.OptionCall)
	require.NoError(t, err)
	assert.Equal(t, 150.0, q.SpotPrice)
	assert.Greater(t, q.TheoreticalPrice, 0.0)
	assert.InDelta(t, 0.54, q.Greeks.Delta, 0.05)
}

func TestPriceOptionRejectsMalformedExpiry(t *testing.T) {
	p := &stubProvider{quote: &models.Quote{Price: 150}}
	svc := newTestService(p)

	_, err := svc.PriceOption(context.Background(), "AAPL", 150, "07/03/2024", models.OptionCall)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)

	_, err = svc.PriceOption(context.Background(), "AAPL", 150, "2024-01-01", models.OptionCall)
	assert.ErrorIs(t, err, errors.ErrInvalidParameter)
}

func TestGetOptionsChain(t *testing.T) {
	p := &stubProvider{quote: &models.Quote{Price: 187.50}}
	svc := newTestService(p)

	chain, err := svc.GetOptionsChain(context.Background(), "AAPL", "", "", models.MoneynessAll)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", chain.Symbol)
	assert.Equal(t, 187.50, chain.SpotPrice)
	assert.NotEmpty(t, chain.Contracts)
	assert.Positive(t, chain.Summary.MaxPainStrike)
}

func TestScanUnusualOptionsUsesWatchlistByDefault(t *testing.T) {
	p := &stubProvider{quote: &models.Quote{Price: 90}}
	svc := newTestService(p)

	flagged, err := svc.ScanUnusualOptions(context.Background(), nil, 0.1, 0)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, u := range flagged {
		seen[u.Underlying] = true
	}
	// Liberal thresholds should surface flow from several watchlist names.
	assert.Greater(t, len(seen), 1)
}

func TestScanUnusualOptionsProviderErrorAborts(t *testing.T) {
	provErr := errors.NewProviderError("stub", "AAPL", errors.ErrSymbolNotFound, nil)
	svc := newTestService(&stubProvider{quoteErr: provErr})

	_, err := svc.ScanUnusualOptions(context.Background(), []string{"AAPL"}, 2, 0)
	assert.ErrorIs(t, err, errors.ErrSymbolNotFound)
}
