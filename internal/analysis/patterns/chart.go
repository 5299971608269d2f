// Package patterns provides chart pattern detection and horizontal
// support/resistance level analysis.
package patterns

import (
	"fmt"
	"math"

	"stock-analyst/internal/analysis"
	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// patternSpec fixes the detection window and the price-target
// multiplier for one pattern type. The multipliers are design
// constants applied to the latest close, not fitted values.
type patternSpec struct {
	window     int
	multiplier float64
}

var patternSpecs = map[analysis.PatternType]patternSpec{
	analysis.PatternHeadAndShoulders:        {window: 30, multiplier: 0.95},
	analysis.PatternInverseHeadAndShoulders: {window: 30, multiplier: 1.05},
	analysis.PatternDoubleTop:               {window: 25, multiplier: 0.92},
	analysis.PatternDoubleBottom:            {window: 25, multiplier: 1.12},
	analysis.PatternAscendingTriangle:       {window: 20, multiplier: 1.08},
	analysis.PatternDescendingTriangle:      {window: 20, multiplier: 0.93},
}

// minConfidence suppresses weak detections.
const minConfidence = 0.6

// Detector scans fixed trailing windows of a series for named chart
// patterns, yielding at most one Pattern per requested type.
type Detector struct {
	tolerance     float64 // relative tolerance for level matching
	swingStrength int     // bars on each side confirming a swing point
}

// NewDetector creates a chart pattern detector.
func NewDetector() *Detector {
	return &Detector{
		tolerance:     0.02,
		swingStrength: 2,
	}
}

// SupportedPatterns returns the names of all detectable pattern types.
func SupportedPatterns() []analysis.PatternType {
	return []analysis.PatternType{
		analysis.PatternHeadAndShoulders,
		analysis.PatternInverseHeadAndShoulders,
		analysis.PatternDoubleTop,
		analysis.PatternDoubleBottom,
		analysis.PatternAscendingTriangle,
		analysis.PatternDescendingTriangle,
	}
}

// Detect scans the series for the requested pattern types (all types
// when none are named). Unknown type names fail fast; detections below
// the confidence threshold are suppressed.
func (d *Detector) Detect(bars []models.Bar, types []analysis.PatternType) ([]analysis.Pattern, error) {
	if len(types) == 0 {
		types = SupportedPatterns()
	}
	for _, t := range types {
		if _, ok := patternSpecs[t]; !ok {
			return nil, errors.NewValidationError("pattern", string(t), "unknown pattern type")
		}
	}
	if len(bars) < 10 {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"pattern detection needs at least 10 bars, have %d", len(bars))
	}

	var patterns []analysis.Pattern
	for _, t := range types {
		spec := patternSpecs[t]
		window := spec.window
		if window > len(bars) {
			window = len(bars)
		}
		tail := bars[len(bars)-window:]

		if p := d.detect(t, tail); p != nil && p.Confidence >= minConfidence {
			patterns = append(patterns, *p)
		}
	}
	return patterns, nil
}

func (d *Detector) detect(t analysis.PatternType, bars []models.Bar) *analysis.Pattern {
	swings := d.findSwingPoints(bars)

	switch t {
	case analysis.PatternHeadAndShoulders:
		return d.detectHeadAndShoulders(bars, swings, false)
	case analysis.PatternInverseHeadAndShoulders:
		return d.detectHeadAndShoulders(bars, swings, true)
	case analysis.PatternDoubleTop:
		return d.detectDouble(bars, swings, true)
	case analysis.PatternDoubleBottom:
		return d.detectDouble(bars, swings, false)
	case analysis.PatternAscendingTriangle:
		return d.detectTriangle(bars, swings, true)
	case analysis.PatternDescendingTriangle:
		return d.detectTriangle(bars, swings, false)
	}
	return nil
}

// swingPoint is a confirmed swing high or low.
type swingPoint struct {
	index  int
	price  float64
	isHigh bool
}

// findSwingPoints identifies swing highs and lows in the window.
func (d *Detector) findSwingPoints(bars []models.Bar) []swingPoint {
	var swings []swingPoint
	n := len(bars)

	for i := d.swingStrength; i < n-d.swingStrength; i++ {
		isSwingHigh := true
		for j := 1; j <= d.swingStrength; j++ {
			if bars[i].High <= bars[i-j].High || bars[i].High <= bars[i+j].High {
				isSwingHigh = false
				break
			}
		}
		if isSwingHigh {
			swings = append(swings, swingPoint{index: i, price: bars[i].High, isHigh: true})
		}

		isSwingLow := true
		for j := 1; j <= d.swingStrength; j++ {
			if bars[i].Low >= bars[i-j].Low || bars[i].Low >= bars[i+j].Low {
				isSwingLow = false
				break
			}
		}
		if isSwingLow {
			swings = append(swings, swingPoint{index: i, price: bars[i].Low, isHigh: false})
		}
	}

	return swings
}

func (d *Detector) pricesEqual(p1, p2 float64) bool {
	if p1 == 0 {
		return p2 == 0
	}
	return math.Abs(p1-p2)/math.Abs(p1) <= d.tolerance
}

func filterSwings(swings []swingPoint, highs bool) []swingPoint {
	var out []swingPoint
	for _, s := range swings {
		if s.isHigh == highs {
			out = append(out, s)
		}
	}
	return out
}

// newPattern assembles the immutable pattern record covering the window.
func newPattern(t analysis.PatternType, bars []models.Bar, confidence float64, description string) *analysis.Pattern {
	lastClose := bars[len(bars)-1].Close
	if confidence > 0.95 {
		confidence = 0.95
	}
	return &analysis.Pattern{
		Type:        t,
		Start:       bars[0].Timestamp,
		End:         bars[len(bars)-1].Timestamp,
		Confidence:  confidence,
		PriceTarget: lastClose * patternSpecs[t].multiplier,
		Description: description,
	}
}

// detectHeadAndShoulders looks for three consecutive extremes with a
// dominant middle peak (or trough when inverted) and roughly level
// shoulders.
func (d *Detector) detectHeadAndShoulders(bars []models.Bar, swings []swingPoint, inverse bool) *analysis.Pattern {
	peaks := filterSwings(swings, !inverse)
	if len(peaks) < 3 {
		return nil
	}

	// Use the three most recent extremes.
	p := peaks[len(peaks)-3:]
	left, head, right := p[0].price, p[1].price, p[2].price

	headDominates := head > left && head > right
	if inverse {
		headDominates = head < left && head < right
	}
	if !headDominates || !d.pricesEqual(left, right) {
		return nil
	}

	// Head prominence relative to the shoulders drives confidence,
	// alongside shoulder symmetry.
	shoulderAvg := (left + right) / 2
	prominence := math.Abs(head-shoulderAvg) / shoulderAvg
	symmetry := 1 - math.Abs(left-right)/math.Max(left, right)/d.tolerance

	confidence := 0.55 + math.Min(prominence*10, 0.25) + 0.15*math.Max(symmetry, 0)

	t := analysis.PatternHeadAndShoulders
	desc := fmt.Sprintf("head %.2f above shoulders near %.2f; bearish reversal", head, shoulderAvg)
	if inverse {
		t = analysis.PatternInverseHeadAndShoulders
		desc = fmt.Sprintf("head %.2f below shoulders near %.2f; bullish reversal", head, shoulderAvg)
	}
	return newPattern(t, bars, confidence, desc)
}

// detectDouble looks for two extremes at nearly the same price.
func (d *Detector) detectDouble(bars []models.Bar, swings []swingPoint, top bool) *analysis.Pattern {
	peaks := filterSwings(swings, top)
	if len(peaks) < 2 {
		return nil
	}

	p := peaks[len(peaks)-2:]
	first, second := p[0].price, p[1].price
	if !d.pricesEqual(first, second) {
		return nil
	}
	if p[1].index-p[0].index < 3 {
		return nil // extremes too close together to form two distinct touches
	}

	closeness := 1 - math.Abs(first-second)/math.Max(first, second)/d.tolerance
	confidence := 0.6 + 0.3*math.Max(closeness, 0)

	t := analysis.PatternDoubleBottom
	desc := fmt.Sprintf("two troughs near %.2f; bullish reversal", (first+second)/2)
	if top {
		t = analysis.PatternDoubleTop
		desc = fmt.Sprintf("two peaks near %.2f; bearish reversal", (first+second)/2)
	}
	return newPattern(t, bars, confidence, desc)
}

// detectTriangle looks for a flat boundary on one side and a
// monotonic squeeze on the other.
func (d *Detector) detectTriangle(bars []models.Bar, swings []swingPoint, ascending bool) *analysis.Pattern {
	flats := filterSwings(swings, ascending)   // flat resistance for ascending
	slopes := filterSwings(swings, !ascending) // rising lows for ascending
	if len(flats) < 2 || len(slopes) < 2 {
		return nil
	}

	f := flats[len(flats)-2:]
	if !d.pricesEqual(f[0].price, f[1].price) {
		return nil
	}

	s := slopes[len(slopes)-2:]
	converging := s[1].price > s[0].price
	if !ascending {
		converging = s[1].price < s[0].price
	}
	if !converging {
		return nil
	}

	slope := math.Abs(s[1].price-s[0].price) / s[0].price
	flatness := 1 - math.Abs(f[0].price-f[1].price)/math.Max(f[0].price, f[1].price)/d.tolerance
	confidence := 0.55 + math.Min(slope*5, 0.2) + 0.2*math.Max(flatness, 0)

	t := analysis.PatternAscendingTriangle
	desc := fmt.Sprintf("flat resistance near %.2f with rising lows; bullish continuation", f[1].price)
	if !ascending {
		t = analysis.PatternDescendingTriangle
		desc = fmt.Sprintf("flat support near %.2f with falling highs; bearish continuation", f[1].price)
	}
	return newPattern(t, bars, confidence, desc)
}
