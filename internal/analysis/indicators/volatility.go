package indicators

import (
	"fmt"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// ATR calculates the Average True Range.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR_%d", a.period)
}

func (a *ATR) MinBars() int {
	return a.period + 1
}

func (a *ATR) Calculate(bars []models.Bar) ([]float64, error) {
	if a.period <= 0 {
		return nil, errors.NewValidationError("period", a.period, "must be positive")
	}
	if len(bars) < a.MinBars() {
		return nil, errors.ErrInsufficientData
	}

	n := len(bars)
	result := make([]float64, n)
	tr := make([]float64, n)

	// First TR is just high - low
	tr[0] = bars[0].High - bars[0].Low

	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	// First ATR is SMA of TR
	result[a.period-1] = mean(tr[:a.period])

	// Subsequent ATR using Wilder smoothing
	for i := a.period; i < n; i++ {
		result[i] = (result[i-1]*float64(a.period-1) + tr[i]) / float64(a.period)
	}

	return result, nil
}

// BollingerBands calculates Bollinger Bands.
type BollingerBands struct {
	period    int
	stdDevMul float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDevMul float64) *BollingerBands {
	return &BollingerBands{
		period:    period,
		stdDevMul: stdDevMul,
	}
}

func (b *BollingerBands) Name() string {
	return fmt.Sprintf("BollingerBands_%d_%.1f", b.period, b.stdDevMul)
}

func (b *BollingerBands) MinBars() int {
	return b.period
}

func (b *BollingerBands) Calculate(bars []models.Bar) (map[string][]float64, error) {
	if b.period <= 0 || b.stdDevMul <= 0 {
		return nil, errors.NewValidationError("period", b.period, "must be positive")
	}
	if len(bars) < b.period {
		return nil, errors.ErrInsufficientData
	}

	n := len(bars)
	closes := closePrices(bars)

	middle := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)

	for i := b.period - 1; i < n; i++ {
		window := closes[i-b.period+1 : i+1]
		sma := mean(window)
		sd := stdDev(window)

		middle[i] = sma
		upper[i] = sma + b.stdDevMul*sd
		lower[i] = sma - b.stdDevMul*sd
	}

	return map[string][]float64{
		"middle": middle,
		"upper":  upper,
		"lower":  lower,
	}, nil
}
