package indicators

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"stock-analyst/internal/models"
)

// barGen generates valid OHLCV bars with realistic values.
func barGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Bar{}), map[string]gopter.Gen{
		"Timestamp": gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":      gen.Float64Range(100.0, 1000.0),
		"High":      gen.Float64Range(100.0, 1000.0),
		"Low":       gen.Float64Range(100.0, 1000.0),
		"Close":     gen.Float64Range(100.0, 1000.0),
		"Volume":    gen.Int64Range(1000, 10000000),
	}).Map(func(b models.Bar) models.Bar {
		// Enforce OHLC constraints: High >= max(Open, Close), Low <= min(Open, Close)
		b.High = math.Max(b.High, math.Max(b.Open, b.Close))
		b.Low = math.Min(b.Low, math.Min(b.Open, b.Close))
		if b.Low > b.High {
			b.Low, b.High = b.High, b.Low
		}
		return b
	})
}

// barSliceGen generates a slice of valid bars with monotonic timestamps.
func barSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, barGen()).Map(func(bars []models.Bar) []models.Bar {
		for len(bars) < minLen {
			bars = append(bars, bars[len(bars)-1])
		}
		base := time.Now().Add(-time.Duration(len(bars)) * 24 * time.Hour)
		for i := range bars {
			bars[i].Timestamp = base.Add(time.Duration(i) * 24 * time.Hour)
		}
		return bars
	})
}

func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(bars []models.Bar) bool {
			rsi := NewRSI(14)
			values, err := rsi.Calculate(bars)
			if err != nil {
				return true
			}
			for _, v := range values {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		barSliceGen(20, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_StochasticWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Stochastic %K and %D values are within [0, 100]", prop.ForAll(
		func(bars []models.Bar) bool {
			stoch := NewStochastic(14, 3)
			values, err := stoch.Calculate(bars)
			if err != nil {
				return true
			}
			for _, series := range [][]float64{values["percent_k"], values["percent_d"]} {
				for _, v := range series {
					if v < 0 || v > 100 {
						return false
					}
				}
			}
			return true
		},
		barSliceGen(25, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_BollingerBandsOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Bollinger Bands: Lower <= Middle <= Upper", prop.ForAll(
		func(bars []models.Bar) bool {
			bb := NewBollingerBands(20, 2.0)
			values, err := bb.Calculate(bars)
			if err != nil {
				return true
			}
			upper := values["upper"]
			middle := values["middle"]
			lower := values["lower"]
			for i := range upper {
				if lower[i] > middle[i] || middle[i] > upper[i] {
					return false
				}
			}
			return true
		},
		barSliceGen(25, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_SMAIsAverageOfCloses(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA is the arithmetic mean of closes over the period", prop.ForAll(
		func(bars []models.Bar) bool {
			period := 10
			sma := NewSMA(period)
			values, err := sma.Calculate(bars)
			if err != nil {
				return true
			}
			closes := closePrices(bars)
			for i := period - 1; i < len(values); i++ {
				window := closes[i-period+1 : i+1]
				if math.Abs(values[i]-mean(window)) > 0.0001 {
					return false
				}
			}
			return true
		},
		barSliceGen(15, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_EMAOfPeriodOneTracksClose(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("EMA(1) equals the close series", prop.ForAll(
		func(bars []models.Bar) bool {
			ema := NewEMA(1)
			values, err := ema.Calculate(bars)
			if err != nil {
				return true
			}
			closes := closePrices(bars)
			for i, v := range values {
				if math.Abs(v-closes[i]) > 1e-9 {
					return false
				}
			}
			return true
		},
		barSliceGen(5, 50),
	))

	properties.TestingRun(t)
}

func TestProperty_ADXWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("ADX, +DI, -DI values are within [0, 100]", prop.ForAll(
		func(bars []models.Bar) bool {
			adx := NewADX(14)
			values, err := adx.Calculate(bars)
			if err != nil {
				return true
			}
			for _, series := range [][]float64{values["adx"], values["plus_di"], values["minus_di"]} {
				for _, v := range series {
					if v < 0 || v > 100 {
						return false
					}
				}
			}
			return true
		},
		barSliceGen(35, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_ATRIsNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("ATR values are non-negative", prop.ForAll(
		func(bars []models.Bar) bool {
			atr := NewATR(14)
			values, err := atr.Calculate(bars)
			if err != nil {
				return true
			}
			for _, v := range values {
				if v < 0 {
					return false
				}
			}
			return true
		},
		barSliceGen(20, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_VWAPWithinBarRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("VWAP stays within the cumulative low/high range", prop.ForAll(
		func(bars []models.Bar) bool {
			vwap := NewVWAP()
			values, err := vwap.Calculate(bars)
			if err != nil {
				return true
			}
			lo, hi := bars[0].Low, bars[0].High
			for i, v := range values {
				lo = math.Min(lo, bars[i].Low)
				hi = math.Max(hi, bars[i].High)
				if v < lo-1e-9 || v > hi+1e-9 {
					return false
				}
			}
			return true
		},
		barSliceGen(5, 100),
	))

	properties.TestingRun(t)
}
