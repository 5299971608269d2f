package options

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analyst/internal/models"
)

func TestNormCDFAccuracy(t *testing.T) {
	// Compare against the library CDF across a wide range; the rational
	// approximation is documented at |error| <= 7.5e-8.
	for x := -6.0; x <= 6.0; x += 0.01 {
		exact := 0.5 * (1 + math.Erf(x/math.Sqrt2))
		if diff := math.Abs(normCDF(x) - exact); diff > 1e-7 {
			t.Fatalf("normCDF(%v) off by %v", x, diff)
		}
	}
}

func TestAtTheMoneyCallReferenceValue(t *testing.T) {
	// S=150, K=150, T=30/365, r=0.05, sigma=0.25 is a standard table case.
	price, err := Price(models.OptionCall, 150, 150, 30.0/365, 0.05, 0.25)
	require.NoError(t, err)

	// Reference computed from the closed form with a high-precision CDF.
	d1 := (math.Log(1.0) + (0.05+0.25*0.25/2)*(30.0/365)) / (0.25 * math.Sqrt(30.0/365))
	d2 := d1 - 0.25*math.Sqrt(30.0/365)
	ref := 150*0.5*(1+math.Erf(d1/math.Sqrt2)) - 150*math.Exp(-0.05*30.0/365)*0.5*(1+math.Erf(d2/math.Sqrt2))

	assert.InDelta(t, ref, price, 1e-2)
	assert.Greater(t, price, 0.0)
}

func TestPriceRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name             string
		s, k, tYears, iv float64
	}{
		{"zero spot", 0, 100, 0.1, 0.25},
		{"negative strike", 100, -5, 0.1, 0.25},
		{"expired", 100, 100, 0, 0.25},
		{"zero vol", 100, 100, 0.1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Price(models.OptionCall, tc.s, tc.k, tc.tYears, 0.05, tc.iv)
			assert.Error(t, err)
		})
	}
}

func TestProperty_PutCallParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call - put = S - K*e^{-rT}", prop.ForAll(
		func(s, k, tYears, r, sigma float64) bool {
			call, err := Price(models.OptionCall, s, k, tYears, r, sigma)
			if err != nil {
				return true
			}
			put, err := Price(models.OptionPut, s, k, tYears, r, sigma)
			if err != nil {
				return true
			}
			parity := s - k*math.Exp(-r*tYears)
			return math.Abs((call-put)-parity) <= 1e-6
		},
		gen.Float64Range(10, 500),
		gen.Float64Range(10, 500),
		gen.Float64Range(0.01, 2),
		gen.Float64Range(0.0, 0.1),
		gen.Float64Range(0.05, 1.0),
	))

	properties.TestingRun(t)
}

func TestProperty_DeltaBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call delta in [0,1], put delta in [-1,0]", prop.ForAll(
		func(s, k, tYears, sigma float64) bool {
			callG, err := ComputeGreeks(models.OptionCall, s, k, tYears, 0.05, sigma)
			if err != nil {
				return true
			}
			putG, err := ComputeGreeks(models.OptionPut, s, k, tYears, 0.05, sigma)
			if err != nil {
				return true
			}
			if callG.Delta < 0 || callG.Delta > 1 {
				return false
			}
			return putG.Delta >= -1 && putG.Delta <= 0
		},
		gen.Float64Range(10, 500),
		gen.Float64Range(10, 500),
		gen.Float64Range(0.01, 2),
		gen.Float64Range(0.05, 1.0),
	))

	properties.TestingRun(t)
}

func TestQuoteIncludesGreeksAndInterpretation(t *testing.T) {
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 0, 30)

	q, err := Quote(DefaultModelConfig(), "AAPL", 150, 150, expiry, models.OptionCall, now)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", q.Underlying)
	assert.Greater(t, q.TheoreticalPrice, 0.0)
	assert.Greater(t, q.Greeks.Delta, 0.0)
	assert.Less(t, q.Greeks.Theta, 0.0)
	assert.NotEmpty(t, q.Interpretation)
}

func TestQuoteRejectsPastExpiry(t *testing.T) {
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	_, err := Quote(DefaultModelConfig(), "AAPL", 150, 150, now.AddDate(0, 0, -1), models.OptionCall, now)
	assert.Error(t, err)
}

func TestStrikeSpacingBands(t *testing.T) {
	assert.Equal(t, 1.0, StrikeSpacing(25))
	assert.Equal(t, 2.5, StrikeSpacing(50))
	assert.Equal(t, 2.5, StrikeSpacing(100))
	assert.Equal(t, 5.0, StrikeSpacing(350))
}

func newTestSynthesizer(seed int64) *Synthesizer {
	s := NewSynthesizer(DefaultModelConfig(), rand.New(rand.NewSource(seed)))
	s.now = func() time.Time {
		return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	}
	return s
}

func TestChainQuoteInvariants(t *testing.T) {
	s := newTestSynthesizer(42)

	chain, err := s.Chain("AAPL", 187.50, time.Time{}, "", models.MoneynessAll)
	require.NoError(t, err)
	require.NotEmpty(t, chain.Contracts)
	assert.Len(t, chain.Expiries, 4)

	for _, c := range chain.Contracts {
		assert.GreaterOrEqual(t, c.Bid, 0.0, c.Symbol)
		assert.LessOrEqual(t, c.Bid, c.Last, c.Symbol)
		assert.LessOrEqual(t, c.Last, c.Ask, c.Symbol)
		assert.Positive(t, c.Volume, c.Symbol)
		assert.Positive(t, c.OpenInterest, c.Symbol)
	}
}

func TestChainMoneynessFilter(t *testing.T) {
	s := newTestSynthesizer(7)
	spot := 187.50

	chain, err := s.Chain("AAPL", spot, time.Time{}, models.OptionCall, models.MoneynessITM)
	require.NoError(t, err)
	require.NotEmpty(t, chain.Contracts)

	for _, c := range chain.Contracts {
		assert.Equal(t, models.OptionCall, c.Type)
		assert.Less(t, c.Strike, spot)
	}
}

func TestChainSingleExpiry(t *testing.T) {
	s := newTestSynthesizer(7)
	expiry := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)

	chain, err := s.Chain("NVDA", 120, expiry, "", models.MoneynessAll)
	require.NoError(t, err)
	require.Len(t, chain.Expiries, 1)

	for _, c := range chain.Contracts {
		assert.True(t, c.Expiry.Equal(expiry))
	}
}

func TestChainRejectsNonPositiveSpot(t *testing.T) {
	s := newTestSynthesizer(1)
	_, err := s.Chain("AAPL", 0, time.Time{}, "", models.MoneynessAll)
	assert.Error(t, err)
}

func TestChainSummaryPutCallRatio(t *testing.T) {
	s := newTestSynthesizer(99)

	chain, err := s.Chain("SPY", 520, time.Time{}, "", models.MoneynessAll)
	require.NoError(t, err)

	var putVol, callVol int64
	for _, c := range chain.Contracts {
		if c.Type == models.OptionPut {
			putVol += c.Volume
		} else {
			callVol += c.Volume
		}
	}
	require.Positive(t, callVol)
	assert.InDelta(t, float64(putVol)/float64(callVol), chain.Summary.PutCallRatio, 1e-9)
}

func TestMaxPainOrderInvariance(t *testing.T) {
	expiry := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)
	contracts := []models.OptionContract{
		{Strike: 100, Type: models.OptionCall, OpenInterest: 5000, Expiry: expiry},
		{Strike: 105, Type: models.OptionCall, OpenInterest: 3000, Expiry: expiry},
		{Strike: 110, Type: models.OptionCall, OpenInterest: 1000, Expiry: expiry},
		{Strike: 100, Type: models.OptionPut, OpenInterest: 2000, Expiry: expiry},
		{Strike: 95, Type: models.OptionPut, OpenInterest: 4000, Expiry: expiry},
		{Strike: 90, Type: models.OptionPut, OpenInterest: 6000, Expiry: expiry},
	}

	forward := MaxPain(contracts)

	reversed := make([]models.OptionContract, len(contracts))
	for i, c := range contracts {
		reversed[len(contracts)-1-i] = c
	}
	assert.Equal(t, forward, MaxPain(reversed))
}

func TestMaxPainEmptyChain(t *testing.T) {
	assert.Zero(t, MaxPain(nil))
}

func TestMaxPainMinimizesIntrinsicPayout(t *testing.T) {
	expiry := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)

	// Heavy put OI at 90 and call OI at 110 pin pain near the middle.
	contracts := []models.OptionContract{
		{Strike: 90, Type: models.OptionPut, OpenInterest: 10000, Expiry: expiry},
		{Strike: 100, Type: models.OptionPut, OpenInterest: 100, Expiry: expiry},
		{Strike: 100, Type: models.OptionCall, OpenInterest: 100, Expiry: expiry},
		{Strike: 110, Type: models.OptionCall, OpenInterest: 10000, Expiry: expiry},
	}
	assert.Equal(t, 100.0, MaxPain(contracts))
}

func TestScanUnusualFiltersAndSorts(t *testing.T) {
	s := newTestSynthesizer(1234)

	flagged, err := s.ScanUnusual(map[string]float64{"AAPL": 187.50, "NVDA": 120}, 0.5, 10000)
	require.NoError(t, err)

	for i, u := range flagged {
		assert.GreaterOrEqual(t, u.VolumeOIRatio, 0.5)
		assert.GreaterOrEqual(t, u.Premium, 10000.0)
		if u.Type == models.OptionCall {
			assert.Equal(t, models.SentimentBullish, u.Sentiment)
		} else {
			assert.Equal(t, models.SentimentBearish, u.Sentiment)
		}
		if u.Volume > 5000 {
			assert.Equal(t, models.ActivityBlockTrade, u.Classification)
		} else {
			assert.Equal(t, models.ActivityHighVolume, u.Classification)
		}
		if i > 0 {
			assert.GreaterOrEqual(t, flagged[i-1].VolumeOIRatio, u.VolumeOIRatio)
		}
	}
}

func TestScanUnusualRejectsBadThresholds(t *testing.T) {
	s := newTestSynthesizer(1)

	_, err := s.ScanUnusual(map[string]float64{"AAPL": 187.50}, 0, 0)
	assert.Error(t, err)

	_, err = s.ScanUnusual(map[string]float64{"AAPL": 187.50}, 2, -1)
	assert.Error(t, err)
}
