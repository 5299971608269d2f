package options

import (
	"sort"

	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

const (
	// contractMultiplier is the share count per standard equity option.
	contractMultiplier = 100

	// blockTradeVolume separates block trades from merely elevated volume.
	blockTradeVolume = 5000
)

// ScanUnusual synthesizes a near-dated chain for each symbol and
// retains contracts whose volume runs well ahead of open interest and
// whose premium clears the caller's floor. spots maps each symbol to
// its current price. Results are sorted by volume/OI ratio descending.
func (s *Synthesizer) ScanUnusual(spots map[string]float64, minVolumeRatio, minPremium float64) ([]models.UnusualContract, error) {
	if minVolumeRatio <= 0 {
		return nil, errors.NewValidationError("minVolumeRatio", minVolumeRatio, "must be positive")
	}
	if minPremium < 0 {
		return nil, errors.NewValidationError("minPremium", minPremium, "must not be negative")
	}

	symbols := make([]string, 0, len(spots))
	for sym := range spots {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var flagged []models.UnusualContract
	for _, sym := range symbols {
		chain, err := s.Chain(sym, spots[sym], s.now().AddDate(0, 0, 30), "", models.MoneynessAll)
		if err != nil {
			return nil, err
		}
		for _, c := range chain.Contracts {
			if c.OpenInterest == 0 {
				continue
			}
			ratio := float64(c.Volume) / float64(c.OpenInterest)
			premium := float64(c.Volume) * c.Last * contractMultiplier
			if ratio < minVolumeRatio || premium < minPremium {
				continue
			}
			flagged = append(flagged, models.UnusualContract{
				OptionContract: c,
				VolumeOIRatio:  ratio,
				Premium:        premium,
				Sentiment:      sentiment(c.Type),
				Classification: classify(c.Volume),
			})
		}
	}

	sort.Slice(flagged, func(i, j int) bool {
		return flagged[i].VolumeOIRatio > flagged[j].VolumeOIRatio
	})
	return flagged, nil
}

func sentiment(t models.OptionType) models.Sentiment {
	if t == models.OptionCall {
		return models.SentimentBullish
	}
	return models.SentimentBearish
}

func classify(volume int64) models.ActivityClass {
	if volume > blockTradeVolume {
		return models.ActivityBlockTrade
	}
	return models.ActivityHighVolume
}
