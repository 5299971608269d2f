package patterns

import (
	"math"
	"sort"
	"time"

	"stock-analyst/internal/analysis"
	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// maxLevels caps the number of reported levels.
const maxLevels = 10

// LevelsResult holds the found levels plus the derived nearest
// support/resistance and risk/reward ratio. RiskReward is only
// meaningful when HasRiskReward is set: it requires a level on each
// side of the current price.
type LevelsResult struct {
	Levels            []analysis.Level
	NearestSupport    *analysis.Level
	NearestResistance *analysis.Level
	RiskReward        float64
	HasRiskReward     bool
}

// LevelFinder clusters price touches into horizontal support and
// resistance levels.
type LevelFinder struct {
	tolerance float64 // bucket width as a fraction of the current price
}

// NewLevelFinder creates a level finder with the default 2% tolerance.
func NewLevelFinder() *LevelFinder {
	return &LevelFinder{tolerance: 0.02}
}

type bucket struct {
	sum        float64
	touches    int
	lastTested time.Time
}

// Find discretizes every bar's high and low into price buckets, counts
// touches per bucket, and promotes buckets with at least sensitivity
// touches to levels. Levels come back sorted by strength descending,
// capped to the strongest ten.
func (f *LevelFinder) Find(bars []models.Bar, sensitivity int) (*LevelsResult, error) {
	if sensitivity < 1 || sensitivity > 10 {
		return nil, errors.NewValidationError("sensitivity", sensitivity, "must be between 1 and 10")
	}
	if len(bars) == 0 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "level detection needs at least one bar")
	}

	currentClose := bars[len(bars)-1].Close
	step := currentClose * f.tolerance
	if step <= 0 {
		return nil, errors.NewValidationError("close", currentClose, "current close must be positive")
	}

	buckets := make(map[int64]*bucket)
	touch := func(price float64, ts time.Time) {
		key := int64(math.Round(price / step))
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += price
		b.touches++
		if ts.After(b.lastTested) {
			b.lastTested = ts
		}
	}

	for _, bar := range bars {
		touch(bar.High, bar.Timestamp)
		touch(bar.Low, bar.Timestamp)
	}

	var levels []analysis.Level
	for _, b := range buckets {
		if b.touches < sensitivity {
			continue
		}
		price := b.sum / float64(b.touches)
		kind := analysis.LevelSupport
		if price > currentClose {
			kind = analysis.LevelResistance
		}
		levels = append(levels, analysis.Level{
			Price:      price,
			Kind:       kind,
			Strength:   math.Min(float64(b.touches)/10, 1),
			TouchCount: b.touches,
			LastTested: b.lastTested,
		})
	}

	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Strength != levels[j].Strength {
			return levels[i].Strength > levels[j].Strength
		}
		return levels[i].TouchCount > levels[j].TouchCount
	})
	if len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}

	result := &LevelsResult{Levels: levels}
	result.derive(currentClose)
	return result, nil
}

// derive finds the nearest level on each side of price and the
// risk/reward ratio when both sides exist.
func (r *LevelsResult) derive(price float64) {
	for i := range r.Levels {
		l := &r.Levels[i]
		switch l.Kind {
		case analysis.LevelSupport:
			if r.NearestSupport == nil || l.Price > r.NearestSupport.Price {
				r.NearestSupport = l
			}
		case analysis.LevelResistance:
			if r.NearestResistance == nil || l.Price < r.NearestResistance.Price {
				r.NearestResistance = l
			}
		}
	}

	if r.NearestSupport != nil && r.NearestResistance != nil {
		risk := price - r.NearestSupport.Price
		if risk > 0 {
			r.RiskReward = (r.NearestResistance.Price - price) / risk
			r.HasRiskReward = true
		}
	}
}
