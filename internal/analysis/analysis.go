// Package analysis provides shared types for technical analysis:
// indicator signals, chart patterns, and price levels.
package analysis

import "time"

// Signal represents a directional read derived from one indicator.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

// Recommendation aggregates the signals of several indicators.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Neutral    Recommendation = "NEUTRAL"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// PatternType names a detectable chart pattern.
type PatternType string

const (
	PatternHeadAndShoulders        PatternType = "head_and_shoulders"
	PatternInverseHeadAndShoulders PatternType = "inverse_head_and_shoulders"
	PatternDoubleTop               PatternType = "double_top"
	PatternDoubleBottom            PatternType = "double_bottom"
	PatternAscendingTriangle       PatternType = "ascending_triangle"
	PatternDescendingTriangle      PatternType = "descending_triangle"
)

// Pattern is a read-only fact about a historical window: a detected
// chart pattern with a confidence score and a price target. It is
// never updated after creation.
type Pattern struct {
	Type        PatternType
	Start       time.Time
	End         time.Time
	Confidence  float64 // [0, 1]
	PriceTarget float64
	Description string
}

// LevelKind represents the kind of a horizontal price level.
type LevelKind string

const (
	LevelSupport    LevelKind = "SUPPORT"
	LevelResistance LevelKind = "RESISTANCE"
)

// Level is a horizontal support or resistance level found by
// price-touch clustering.
type Level struct {
	Price      float64
	Kind       LevelKind
	Strength   float64 // min(touches/10, 1)
	TouchCount int
	LastTested time.Time
}
