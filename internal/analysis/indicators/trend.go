package indicators

import (
	"fmt"
	"math"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// SMA calculates Simple Moving Average.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) MinBars() int {
	return s.period
}

func (s *SMA) Calculate(bars []models.Bar) ([]float64, error) {
	if s.period <= 0 {
		return nil, errors.NewValidationError("period", s.period, "must be positive")
	}
	if len(bars) < s.period {
		return nil, errors.ErrInsufficientData
	}

	result := make([]float64, len(bars))
	closes := closePrices(bars)

	for i := s.period - 1; i < len(bars); i++ {
		result[i] = mean(closes[i-s.period+1 : i+1])
	}

	return result, nil
}

// EMA calculates Exponential Moving Average.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

func (e *EMA) MinBars() int {
	return e.period
}

func (e *EMA) Calculate(bars []models.Bar) ([]float64, error) {
	if e.period <= 0 {
		return nil, errors.NewValidationError("period", e.period, "must be positive")
	}
	if len(bars) < e.period {
		return nil, errors.ErrInsufficientData
	}

	return calculateEMA(closePrices(bars), e.period), nil
}

// calculateEMA computes an EMA over raw values (helper for other indicators).
func calculateEMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}

	result := make([]float64, len(values))
	multiplier := 2.0 / float64(period+1)

	// First EMA is SMA
	result[period-1] = mean(values[:period])

	for i := period; i < len(values); i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}

	return result
}

// MACD calculates Moving Average Convergence Divergence.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator. Standard periods are (12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) MinBars() int {
	return m.slowPeriod + m.signalPeriod
}

// Calculate returns the MACD line, signal line and histogram series.
func (m *MACD) Calculate(bars []models.Bar) (map[string][]float64, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return nil, errors.NewValidationError("period", 0, "must be positive")
	}
	if len(bars) < m.MinBars() {
		return nil, errors.ErrInsufficientData
	}

	closes := closePrices(bars)
	fastEMA := calculateEMA(closes, m.fastPeriod)
	slowEMA := calculateEMA(closes, m.slowPeriod)

	// MACD Line = Fast EMA - Slow EMA
	macdLine := make([]float64, len(bars))
	for i := m.slowPeriod - 1; i < len(bars); i++ {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal Line = EMA of MACD Line
	signalLine := make([]float64, len(bars))
	startIdx := m.slowPeriod - 1
	signalEMA := calculateEMA(macdLine[startIdx:], m.signalPeriod)
	for i := 0; i < len(signalEMA); i++ {
		signalLine[startIdx+i] = signalEMA[i]
	}

	// Histogram = MACD Line - Signal Line
	histogram := make([]float64, len(bars))
	for i := m.MinBars() - 1; i < len(bars); i++ {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return map[string][]float64{
		"macd":      macdLine,
		"signal":    signalLine,
		"histogram": histogram,
	}, nil
}

// ADX calculates Average Directional Index with +DI and -DI.
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator.
func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX_%d", a.period)
}

func (a *ADX) MinBars() int {
	return a.period * 2
}

func (a *ADX) Calculate(bars []models.Bar) (map[string][]float64, error) {
	if a.period <= 0 {
		return nil, errors.NewValidationError("period", a.period, "must be positive")
	}
	if len(bars) < a.MinBars() {
		return nil, errors.ErrInsufficientData
	}

	n := len(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)

	for i := 1; i < n; i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	smoothPlusDM := wilderSmooth(plusDM, a.period)
	smoothMinusDM := wilderSmooth(minusDM, a.period)
	smoothTR := wilderSmooth(tr, a.period)

	plusDI := make([]float64, n)
	minusDI := make([]float64, n)
	dx := make([]float64, n)

	for i := a.period; i < n; i++ {
		if smoothTR[i] != 0 {
			plusDI[i] = 100 * smoothPlusDM[i] / smoothTR[i]
			minusDI[i] = 100 * smoothMinusDM[i] / smoothTR[i]
		}
		diSum := plusDI[i] + minusDI[i]
		if diSum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / diSum
		}
	}

	adx := wilderSmooth(dx[a.period:], a.period)
	adxResult := make([]float64, n)
	for i := 0; i < len(adx); i++ {
		adxResult[a.period+i] = adx[i]
	}

	return map[string][]float64{
		"adx":      adxResult,
		"plus_di":  plusDI,
		"minus_di": minusDI,
	}, nil
}
