package indicators

import (
	"stock-analyst/internal/errors"
	"stock-analyst/internal/models"
)

// OBV calculates On-Balance Volume: cumulative volume signed by the
// direction of the close.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) MinBars() int {
	return 2
}

func (o *OBV) Calculate(bars []models.Bar) ([]float64, error) {
	if len(bars) < o.MinBars() {
		return nil, errors.ErrInsufficientData
	}

	n := len(bars)
	result := make([]float64, n)
	result[0] = float64(bars[0].Volume)

	for i := 1; i < n; i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			result[i] = result[i-1] + float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			result[i] = result[i-1] - float64(bars[i].Volume)
		default:
			result[i] = result[i-1]
		}
	}

	return result, nil
}

// VWAP calculates the Volume Weighted Average Price over the window.
type VWAP struct{}

// NewVWAP creates a new VWAP indicator.
func NewVWAP() *VWAP {
	return &VWAP{}
}

func (v *VWAP) Name() string {
	return "VWAP"
}

func (v *VWAP) MinBars() int {
	return 1
}

func (v *VWAP) Calculate(bars []models.Bar) ([]float64, error) {
	if len(bars) < v.MinBars() {
		return nil, errors.ErrInsufficientData
	}

	n := len(bars)
	result := make([]float64, n)

	var cumPV, cumVol float64
	for i := 0; i < n; i++ {
		cumPV += typicalPrice(bars[i]) * float64(bars[i].Volume)
		cumVol += float64(bars[i].Volume)

		if cumVol == 0 {
			result[i] = typicalPrice(bars[i])
		} else {
			result[i] = cumPV / cumVol
		}
	}

	return result, nil
}
