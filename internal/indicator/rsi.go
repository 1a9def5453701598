package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// RSI represents the Relative Strength Index indicator with Wilder smoothing.
// When the average loss is zero the output is pinned (100, or 50 when the
// average gain is also zero) instead of propagating a division by zero.
type RSI struct{}

// NewRSI creates a new RSI indicator.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// WarmUp implements the Indicator interface.
func (r *RSI) WarmUp(params types.Params) (int, error) {
	period := params.Int("period", 14)
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period + 1, nil
}

// Compute implements the Indicator interface.
func (r *RSI) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	period := params.Int("period", 14)
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	out := NewSeries(len(bars))
	if len(bars) <= period {
		return map[string]Series{SeriesRSI: out}, nil
	}

	var avgGain, avgLoss float64

	// Seed with the simple mean of the first period gains/losses.
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out.Set(period, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close

		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out.Set(i, rsiValue(avgGain, avgLoss))
	}

	return map[string]Series{SeriesRSI: out}, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}

		return 100
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}
