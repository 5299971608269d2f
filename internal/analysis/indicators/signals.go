package indicators

import (
	"stock-analyst/internal/analysis"
	"stock-analyst/internal/models"
)

// Default catalogue parameters.
const (
	defaultRSIPeriod       = 14
	defaultMACDFast        = 12
	defaultMACDSlow        = 26
	defaultMACDSignal      = 9
	defaultBollingerPeriod = 20
	defaultBollingerWidth  = 2.0
	defaultSMAPeriod       = 20
	defaultEMAPeriod       = 20
	defaultStochK          = 14
	defaultStochD          = 3
	defaultADXPeriod       = 14
	defaultATRPeriod       = 14
)

// Signal thresholds. Comparisons are strict so exact boundary values
// stay neutral where a neutral state exists.
const (
	rsiOversold     = 30
	rsiOverbought   = 70
	stochOversold   = 20
	stochOverbought = 80
	adxTrending     = 25
)

func (e *Engine) registerDefaults() {
	e.register("rsi", defaultRSIPeriod+1, computeRSI)
	e.register("macd", defaultMACDSlow+defaultMACDSignal, computeMACD)
	e.register("bollinger", defaultBollingerPeriod, computeBollinger)
	e.register("sma", defaultSMAPeriod, computeSMA)
	e.register("ema", defaultEMAPeriod, computeEMA)
	e.register("stochastic", defaultStochK+defaultStochD, computeStochastic)
	e.register("adx", defaultADXPeriod*2, computeADX)
	e.register("atr", defaultATRPeriod+1, computeATR)
	e.register("obv", 2, computeOBV)
	e.register("vwap", 1, computeVWAP)
}

func lastBar(bars []models.Bar) models.Bar {
	return bars[len(bars)-1]
}

func computeRSI(bars []models.Bar) (Result, error) {
	values, err := NewRSI(defaultRSIPeriod).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	value := values[len(values)-1]

	signal := analysis.SignalNeutral
	if value < rsiOversold {
		signal = analysis.SignalBuy
	} else if value > rsiOverbought {
		signal = analysis.SignalSell
	}

	return Result{
		Name:      "rsi",
		Value:     value,
		Signal:    signal,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeMACD(bars []models.Bar) (Result, error) {
	series, err := NewMACD(defaultMACDFast, defaultMACDSlow, defaultMACDSignal).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	n := len(bars)
	line := series["macd"][n-1]
	signalLine := series["signal"][n-1]
	histogram := series["histogram"][n-1]

	signal := analysis.SignalNeutral
	if line > signalLine {
		signal = analysis.SignalBuy
	} else if line < signalLine {
		signal = analysis.SignalSell
	}

	return Result{
		Name:  "macd",
		Value: line,
		Components: map[string]float64{
			"macd":      line,
			"signal":    signalLine,
			"histogram": histogram,
		},
		Signal:    signal,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeBollinger(bars []models.Bar) (Result, error) {
	series, err := NewBollingerBands(defaultBollingerPeriod, defaultBollingerWidth).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	n := len(bars)
	upper := series["upper"][n-1]
	middle := series["middle"][n-1]
	lower := series["lower"][n-1]
	close := lastBar(bars).Close

	signal := analysis.SignalNeutral
	if close < lower {
		signal = analysis.SignalBuy
	} else if close > upper {
		signal = analysis.SignalSell
	}

	return Result{
		Name:  "bollinger",
		Value: middle,
		Components: map[string]float64{
			"upper":  upper,
			"middle": middle,
			"lower":  lower,
		},
		Signal:    signal,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

// maSignal implements the moving-average rule: close above the
// average reads BUY, anything else SELL.
func maSignal(close, average float64) analysis.Signal {
	if close > average {
		return analysis.SignalBuy
	}
	return analysis.SignalSell
}

func computeSMA(bars []models.Bar) (Result, error) {
	values, err := NewSMA(defaultSMAPeriod).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	value := values[len(values)-1]

	return Result{
		Name:      "sma",
		Value:     value,
		Signal:    maSignal(lastBar(bars).Close, value),
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeEMA(bars []models.Bar) (Result, error) {
	values, err := NewEMA(defaultEMAPeriod).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	value := values[len(values)-1]

	return Result{
		Name:      "ema",
		Value:     value,
		Signal:    maSignal(lastBar(bars).Close, value),
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeStochastic(bars []models.Bar) (Result, error) {
	series, err := NewStochastic(defaultStochK, defaultStochD).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	n := len(bars)
	k := series["percent_k"][n-1]
	d := series["percent_d"][n-1]

	signal := analysis.SignalNeutral
	if k < stochOversold {
		signal = analysis.SignalBuy
	} else if k > stochOverbought {
		signal = analysis.SignalSell
	}

	return Result{
		Name:  "stochastic",
		Value: k,
		Components: map[string]float64{
			"percent_k": k,
			"percent_d": d,
		},
		Signal:    signal,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeADX(bars []models.Bar) (Result, error) {
	series, err := NewADX(defaultADXPeriod).Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	n := len(bars)
	adx := series["adx"][n-1]

	// ADX measures trend strength only, not direction.
	signal := analysis.SignalNeutral
	if adx > adxTrending {
		signal = analysis.SignalBuy
	}

	return Result{
		Name:  "adx",
		Value: adx,
		Components: map[string]float64{
			"plus_di":  series["plus_di"][n-1],
			"minus_di": series["minus_di"][n-1],
		},
		Signal:    signal,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeATR(bars []models.Bar) (Result, error) {
	values, err := NewATR(defaultATRPeriod).Calculate(bars)
	if err != nil {
		return Result{}, err
	}

	// Volatility measure, not directional.
	return Result{
		Name:      "atr",
		Value:     values[len(values)-1],
		Signal:    analysis.SignalNeutral,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeOBV(bars []models.Bar) (Result, error) {
	values, err := NewOBV().Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	n := len(values)
	value := values[n-1]

	signal := analysis.SignalSell
	if value > values[n-2] {
		signal = analysis.SignalBuy
	}

	return Result{
		Name:      "obv",
		Value:     value,
		Signal:    signal,
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

func computeVWAP(bars []models.Bar) (Result, error) {
	values, err := NewVWAP().Calculate(bars)
	if err != nil {
		return Result{}, err
	}
	value := values[len(values)-1]

	return Result{
		Name:      "vwap",
		Value:     value,
		Signal:    maSignal(lastBar(bars).Close, value),
		Timestamp: lastBar(bars).Timestamp.Unix(),
	}, nil
}

// Aggregate summarizes the signal counts of a set of results into a
// recommendation with the underlying percentages.
type Aggregate struct {
	Recommendation analysis.Recommendation
	BuyCount       int
	SellCount      int
	NeutralCount   int
	BuyPercent     float64
	SellPercent    float64
}

// Aggregated derives the overall recommendation. Thresholds are strict:
// more than 60% BUY reads STRONG_BUY, more than 40% reads BUY, and the
// mirror for SELL; exact boundary percentages resolve to the weaker
// label.
func Aggregated(results []Result) Aggregate {
	agg := Aggregate{Recommendation: analysis.Neutral}
	if len(results) == 0 {
		return agg
	}

	for _, r := range results {
		switch r.Signal {
		case analysis.SignalBuy:
			agg.BuyCount++
		case analysis.SignalSell:
			agg.SellCount++
		default:
			agg.NeutralCount++
		}
	}

	total := float64(len(results))
	agg.BuyPercent = float64(agg.BuyCount) / total * 100
	agg.SellPercent = float64(agg.SellCount) / total * 100

	switch {
	case agg.BuyPercent > 60:
		agg.Recommendation = analysis.StrongBuy
	case agg.BuyPercent > 40:
		agg.Recommendation = analysis.Buy
	case agg.SellPercent > 60:
		agg.Recommendation = analysis.StrongSell
	case agg.SellPercent > 40:
		agg.Recommendation = analysis.Sell
	}

	return agg
}
