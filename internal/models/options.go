package models

import "time"

// OptionType represents the type of an option contract.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// Moneyness filters an options chain relative to the spot price.
type Moneyness string

const (
	MoneynessITM Moneyness = "ITM"
	MoneynessATM Moneyness = "ATM"
	MoneynessOTM Moneyness = "OTM"
	MoneynessAll Moneyness = "ALL"
)

// Greeks holds the option price sensitivities. Theta is a daily figure.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// OptionContract represents a single option contract.
type OptionContract struct {
	Symbol       string
	Underlying   string
	Strike       float64
	Expiry       time.Time
	Type         OptionType
	Bid          float64
	Ask          float64
	Last         float64
	Volume       int64
	OpenInterest int64
	IV           float64
	Greeks       Greeks
}

// Unusual reports whether the contract's volume exceeds twice its open interest.
func (c OptionContract) Unusual() bool {
	return c.OpenInterest > 0 && c.Volume > 2*c.OpenInterest
}

// OptionQuote is the result of pricing a single contract.
type OptionQuote struct {
	Underlying       string
	Strike           float64
	Expiry           time.Time
	Type             OptionType
	SpotPrice        float64
	TheoreticalPrice float64
	IV               float64
	Greeks           Greeks
	Interpretation   string
}

// ChainSummary holds chain-level aggregates.
type ChainSummary struct {
	TotalCallVolume int64
	TotalPutVolume  int64
	TotalCallOI     int64
	TotalPutOI      int64
	PutCallRatio    float64
	MaxPainStrike   float64
	UnusualCount    int
}

// OptionsChain represents a synthesized option chain for one underlying.
type OptionsChain struct {
	Symbol    string
	SpotPrice float64
	Expiries  []time.Time
	Contracts []OptionContract
	Summary   ChainSummary
}

// Sentiment tags the directional read of an unusual contract.
type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
)

// ActivityClass classifies the size of unusual option flow.
type ActivityClass string

const (
	ActivityBlockTrade ActivityClass = "BLOCK_TRADE"
	ActivityHighVolume ActivityClass = "HIGH_VOLUME"
)

// UnusualContract is an option contract flagged by the unusual-activity scan.
type UnusualContract struct {
	OptionContract
	VolumeOIRatio  float64
	Premium        float64
	Sentiment      Sentiment
	Classification ActivityClass
}
