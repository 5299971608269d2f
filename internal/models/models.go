// Package models provides domain models for the analytics core.
package models

import (
	"time"
)

// Bar represents OHLCV data for a single time period.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote represents a point-in-time market quote.
type Quote struct {
	Symbol        string
	Price         float64
	Bid           float64
	Ask           float64
	BidSize       int64
	AskSize       int64
	Open          float64
	High          float64
	Low           float64
	PrevClose     float64
	Volume        int64
	Change        float64
	ChangePercent float64
	Timestamp     time.Time
}

// WithChange returns a copy of the quote with Change and ChangePercent
// derived from Price and PrevClose. Both are zero when PrevClose is zero.
func (q Quote) WithChange() Quote {
	if q.PrevClose == 0 {
		q.Change = 0
		q.ChangePercent = 0
		return q
	}
	q.Change = q.Price - q.PrevClose
	q.ChangePercent = q.Change / q.PrevClose * 100
	return q
}

// SeriesSummary describes an OHLCV series.
type SeriesSummary struct {
	Symbol       string
	Start        time.Time
	End          time.Time
	BarCount     int
	HighestClose float64
	LowestClose  float64
	TotalVolume  int64
}

// Summarize derives a SeriesSummary from a series of bars.
// Returns a zero summary for an empty series.
func Summarize(symbol string, bars []Bar) SeriesSummary {
	s := SeriesSummary{Symbol: symbol, BarCount: len(bars)}
	if len(bars) == 0 {
		return s
	}

	s.Start = bars[0].Timestamp
	s.End = bars[len(bars)-1].Timestamp
	s.HighestClose = bars[0].Close
	s.LowestClose = bars[0].Close

	for _, b := range bars {
		if b.Close > s.HighestClose {
			s.HighestClose = b.Close
		}
		if b.Close < s.LowestClose {
			s.LowestClose = b.Close
		}
		s.TotalVolume += b.Volume
	}

	return s
}
