package options

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

const (
	strikesPerSide = 10
	atmBand        = 0.02

	// Expiries synthesized when the caller does not request one.
	defaultExpiryDays = 4
)

var expiryLadderDays = [defaultExpiryDays]int{7, 14, 30, 60}

// Synthesizer generates option chains for an underlying from a single
// spot price. Bid/ask/last and the Greeks are deterministic functions
// of the inputs; volume and open interest come from the injected
// random source so tests can seed it.
type Synthesizer struct {
	cfg ModelConfig
	rng *rand.Rand
	now func() time.Time
}

// NewSynthesizer creates a chain synthesizer using the given random
// source. A nil rng falls back to a time-seeded one.
func NewSynthesizer(cfg ModelConfig, rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{cfg: cfg, rng: rng, now: time.Now}
}

// StrikeSpacing returns the strike ladder increment for a spot price.
func StrikeSpacing(spot float64) float64 {
	switch {
	case spot < 50:
		return 1
	case spot <= 100:
		return 2.5
	default:
		return 5
	}
}

// strikeLadder builds strikes centered on the spot price.
func strikeLadder(spot float64) []float64 {
	spacing := StrikeSpacing(spot)
	atm := math.Round(spot/spacing) * spacing

	strikes := make([]float64, 0, 2*strikesPerSide+1)
	for i := -strikesPerSide; i <= strikesPerSide; i++ {
		strike := atm + float64(i)*spacing
		if strike > 0 {
			strikes = append(strikes, strike)
		}
	}
	return strikes
}

// matchesMoneyness reports whether a strike passes the requested
// moneyness filter. Strikes within the ATM band around spot count as
// at the money regardless of side.
func matchesMoneyness(filter models.Moneyness, optType models.OptionType, spot, strike float64) bool {
	rel := (strike - spot) / spot
	if filter == models.MoneynessAll || filter == "" {
		return true
	}
	if math.Abs(rel) <= atmBand {
		return filter == models.MoneynessATM
	}

	itm := (optType == models.OptionCall && strike < spot) ||
		(optType == models.OptionPut && strike > spot)
	switch filter {
	case models.MoneynessITM:
		return itm
	case models.MoneynessOTM:
		return !itm
	default:
		return false
	}
}

// Chain synthesizes a full chain for the underlying. When expiry is
// the zero time, a standard ladder of near-dated expirations is used.
// kind restricts to CALL or PUT; empty means both sides.
func (s *Synthesizer) Chain(symbol string, spot float64, expiry time.Time, kind models.OptionType, moneyness models.Moneyness) (*models.OptionsChain, error) {
	if spot <= 0 {
		return nil, errors.NewValidationError("spot", spot, "must be positive")
	}

	now := s.now()
	expiries := s.expiries(expiry, now)
	strikes := strikeLadder(spot)

	types := []models.OptionType{models.OptionCall, models.OptionPut}
	if kind == models.OptionCall || kind == models.OptionPut {
		types = []models.OptionType{kind}
	}

	chain := &models.OptionsChain{
		Symbol:    symbol,
		SpotPrice: spot,
		Expiries:  expiries,
	}
	for _, exp := range expiries {
		for _, strike := range strikes {
			for _, optType := range types {
				if !matchesMoneyness(moneyness, optType, spot, strike) {
					continue
				}
				chain.Contracts = append(chain.Contracts, s.contract(symbol, spot, strike, exp, optType, now))
			}
		}
	}

	chain.Summary = summarize(chain.Contracts)
	return chain, nil
}

func (s *Synthesizer) expiries(requested, now time.Time) []time.Time {
	if !requested.IsZero() {
		return []time.Time{requested}
	}
	out := make([]time.Time, 0, defaultExpiryDays)
	for _, days := range expiryLadderDays {
		out = append(out, now.AddDate(0, 0, days))
	}
	return out
}

// contract builds one synthetic contract. Pricing parts are
// deterministic; only volume and open interest draw randomness.
func (s *Synthesizer) contract(symbol string, spot, strike float64, expiry time.Time, optType models.OptionType, now time.Time) models.OptionContract {
	days := math.Max(expiry.Sub(now).Hours()/24, 1)

	var intrinsic, moneyness float64
	if optType == models.OptionCall {
		intrinsic = math.Max(spot-strike, 0)
		moneyness = (spot - strike) / spot
	} else {
		intrinsic = math.Max(strike-spot, 0)
		moneyness = (strike - spot) / spot
	}

	timeValue := spot * 0.015 * math.Exp(-2*math.Abs(moneyness)) * math.Sqrt(days/30)
	last := intrinsic + timeValue

	spread := math.Max(0.05, last*0.05)
	bid := math.Max(last-spread/2, 0)
	ask := last + spread/2

	// Liquidity concentrates near the money.
	liquidity := math.Exp(-3 * math.Abs(moneyness))
	volume := s.rng.Int63n(int64(5000*liquidity)+1) + 1
	openInterest := s.rng.Int63n(int64(20000*liquidity)+1) + 10

	yearT := math.Max(YearFraction(expiry, now), 1.0/365)
	greeks, _ := ComputeGreeks(optType, spot, strike, yearT, s.cfg.RiskFreeRate, s.cfg.ImpliedVol)

	return models.OptionContract{
		Symbol:       occSymbol(symbol, expiry, optType, strike),
		Underlying:   symbol,
		Strike:       strike,
		Expiry:       expiry,
		Type:         optType,
		Bid:          bid,
		Ask:          ask,
		Last:         last,
		Volume:       volume,
		OpenInterest: openInterest,
		IV:           s.cfg.ImpliedVol,
		Greeks:       greeks,
	}
}

func occSymbol(underlying string, expiry time.Time, optType models.OptionType, strike float64) string {
	letter := "C"
	if optType == models.OptionPut {
		letter = "P"
	}
	return fmt.Sprintf("%s%s%s%08d", underlying, expiry.Format("060102"), letter, int64(strike*1000))
}

func summarize(contracts []models.OptionContract) models.ChainSummary {
	var sum models.ChainSummary
	for _, c := range contracts {
		if c.Type == models.OptionCall {
			sum.TotalCallVolume += c.Volume
			sum.TotalCallOI += c.OpenInterest
		} else {
			sum.TotalPutVolume += c.Volume
			sum.TotalPutOI += c.OpenInterest
		}
		if c.Unusual() {
			sum.UnusualCount++
		}
	}
	if sum.TotalCallVolume > 0 {
		sum.PutCallRatio = float64(sum.TotalPutVolume) / float64(sum.TotalCallVolume)
	}
	sum.MaxPainStrike = MaxPain(contracts)
	return sum
}

// MaxPain returns the strike at which option holders lose the most in
// aggregate at expiration. Every distinct strike in the chain is a
// candidate settlement price; the one minimizing total open-interest
// weighted intrinsic value wins. The result does not depend on the
// order of the input contracts; ties resolve to the lowest strike.
func MaxPain(contracts []models.OptionContract) float64 {
	if len(contracts) == 0 {
		return 0
	}

	seen := make(map[float64]struct{})
	candidates := make([]float64, 0, len(contracts))
	for _, c := range contracts {
		if _, ok := seen[c.Strike]; !ok {
			seen[c.Strike] = struct{}{}
			candidates = append(candidates, c.Strike)
		}
	}
	sort.Float64s(candidates)

	best := candidates[0]
	bestLoss := math.MaxFloat64
	for _, settle := range candidates {
		var loss float64
		for _, c := range contracts {
			var intrinsic float64
			if c.Type == models.OptionCall {
				intrinsic = math.Max(settle-c.Strike, 0)
			} else {
				intrinsic = math.Max(c.Strike-settle, 0)
			}
			loss += intrinsic * float64(c.OpenInterest)
		}
		if loss < bestLoss {
			bestLoss = loss
			best = settle
		}
	}
	return best
}
