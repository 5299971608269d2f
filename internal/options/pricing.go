// Package options provides Black-Scholes pricing and Greeks, synthetic
// option chain generation, and unusual-activity scanning. Pricing is
// fully deterministic; only chain synthesis draws random numbers.
package options

import (
	"fmt"
	"math"
	"time"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// ModelConfig holds the fixed pricing model assumptions: a flat
// risk-free rate and a flat implied volatility (no smile).
type ModelConfig struct {
	RiskFreeRate float64
	ImpliedVol   float64
}

// DefaultModelConfig returns the standard model assumptions.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		RiskFreeRate: 0.05,
		ImpliedVol:   0.25,
	}
}

// Abramowitz & Stegun 7.1.26 rational approximation coefficients for
// erf, giving |error| <= 7.5e-8 on the normal CDF.
const (
	asP  = 0.3275911
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
)

// normCDF evaluates the standard normal CDF via the A&S 7.1.26
// approximation of erf, extended to negative arguments by symmetry.
func normCDF(x float64) float64 {
	return 0.5 * (1 + erfAS(x/math.Sqrt2))
}

func erfAS(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}

	t := 1 / (1 + asP*x)
	poly := t * (asA1 + t*(asA2+t*(asA3+t*(asA4+t*asA5))))
	return sign * (1 - poly*math.Exp(-x*x))
}

// normPDF is the exact standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// Price computes the Black-Scholes theoretical price of a European
// option. T is the time to expiration in years.
func Price(optType models.OptionType, s, k, t, r, sigma float64) (float64, error) {
	if err := validateInputs(s, k, t, sigma); err != nil {
		return 0, err
	}

	d1, d2 := dValues(s, k, t, r, sigma)
	discount := math.Exp(-r * t)

	switch optType {
	case models.OptionCall:
		return s*normCDF(d1) - k*discount*normCDF(d2), nil
	case models.OptionPut:
		return k*discount*normCDF(-d2) - s*normCDF(-d1), nil
	default:
		return 0, errors.NewValidationError("type", optType, "must be CALL or PUT")
	}
}

// ComputeGreeks computes the option sensitivities. Theta is reported
// as a daily figure (annual theta divided by 365).
func ComputeGreeks(optType models.OptionType, s, k, t, r, sigma float64) (models.Greeks, error) {
	if err := validateInputs(s, k, t, sigma); err != nil {
		return models.Greeks{}, err
	}

	d1, d2 := dValues(s, k, t, r, sigma)
	discount := math.Exp(-r * t)
	sqrtT := math.Sqrt(t)

	g := models.Greeks{
		Gamma: normPDF(d1) / (s * sigma * sqrtT),
		Vega:  s * normPDF(d1) * sqrtT / 100,
	}

	commonTheta := -s * normPDF(d1) * sigma / (2 * sqrtT)

	switch optType {
	case models.OptionCall:
		g.Delta = normCDF(d1)
		g.Theta = (commonTheta - r*k*discount*normCDF(d2)) / 365
		g.Rho = k * t * discount * normCDF(d2) / 100
	case models.OptionPut:
		g.Delta = normCDF(d1) - 1
		g.Theta = (commonTheta + r*k*discount*normCDF(-d2)) / 365
		g.Rho = -k * t * discount * normCDF(-d2) / 100
	default:
		return models.Greeks{}, errors.NewValidationError("type", optType, "must be CALL or PUT")
	}

	return g, nil
}

func dValues(s, k, t, r, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+sigma*sigma/2)*t) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

func validateInputs(s, k, t, sigma float64) error {
	if s <= 0 {
		return errors.NewValidationError("spot", s, "must be positive")
	}
	if k <= 0 {
		return errors.NewValidationError("strike", k, "must be positive")
	}
	if t <= 0 {
		return errors.NewValidationError("expiry", t, "must be in the future")
	}
	if sigma <= 0 {
		return errors.NewValidationError("volatility", sigma, "must be positive")
	}
	return nil
}

// YearFraction converts an expiry date into a year fraction from now.
func YearFraction(expiry, now time.Time) float64 {
	return expiry.Sub(now).Hours() / 24 / 365
}

// Quote prices a single contract and assembles the full option quote
// with Greeks and a plain-language interpretation.
func Quote(cfg ModelConfig, underlying string, spot, strike float64, expiry time.Time, optType models.OptionType, now time.Time) (*models.OptionQuote, error) {
	t := YearFraction(expiry, now)

	price, err := Price(optType, spot, strike, t, cfg.RiskFreeRate, cfg.ImpliedVol)
	if err != nil {
		return nil, err
	}
	greeks, err := ComputeGreeks(optType, spot, strike, t, cfg.RiskFreeRate, cfg.ImpliedVol)
	if err != nil {
		return nil, err
	}

	return &models.OptionQuote{
		Underlying:       underlying,
		Strike:           strike,
		Expiry:           expiry,
		Type:             optType,
		SpotPrice:        spot,
		TheoreticalPrice: price,
		IV:               cfg.ImpliedVol,
		Greeks:           greeks,
		Interpretation:   interpret(optType, spot, strike, greeks, t),
	}, nil
}

func interpret(optType models.OptionType, spot, strike float64, g models.Greeks, t float64) string {
	moneyness := "at the money"
	switch {
	case optType == models.OptionCall && spot > strike*1.01,
		optType == models.OptionPut && spot < strike*0.99:
		moneyness = "in the money"
	case optType == models.OptionCall && spot < strike*0.99,
		optType == models.OptionPut && spot > strike*1.01:
		moneyness = "out of the money"
	}

	return fmt.Sprintf(
		"%s %s: a $1 move in the underlying shifts the premium by about $%.2f; "+
			"the position loses about $%.2f per day to time decay with %.0f days remaining",
		moneyness, string(optType), math.Abs(g.Delta), math.Abs(g.Theta), t*365)
}
