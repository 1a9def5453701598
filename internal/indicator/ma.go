package indicator

import (
	"math"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// SMA indicator implements Simple Moving Average calculation over closes.
type SMA struct{}

// NewSMA creates a new SMA indicator.
func NewSMA() Indicator {
	return &SMA{}
}

// Name returns the name of the indicator.
func (m *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// WarmUp implements the Indicator interface.
func (m *SMA) WarmUp(params types.Params) (int, error) {
	period := params.Int("period", 20)
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, nil
}

// Compute implements the Indicator interface.
func (m *SMA) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	period := params.Int("period", 20)
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	out := rollingMean(closes(bars), period)

	return map[string]Series{SeriesSMA: out}, nil
}

// rollingMean returns the rolling mean of values over a fixed window.
// Indices before window-1 are unavailable.
func rollingMean(values []float64, window int) Series {
	out := NewSeries(len(values))

	var sum float64

	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}

		if i >= window-1 {
			out.Set(i, sum/float64(window))
		}
	}

	return out
}

// rollingStd returns the rolling population standard deviation of values over
// a fixed window.
func rollingStd(values []float64, window int) Series {
	out := NewSeries(len(values))

	for i := window - 1; i < len(values); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}

		mean := sum / float64(window)

		var variance float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}

		out.Set(i, math.Sqrt(variance/float64(window)))
	}

	return out
}

// emaSeries computes an exponential moving average seeded with the simple
// mean of the first period values. Indices before period-1 are unavailable.
func emaSeries(values []float64, period int) Series {
	out := NewSeries(len(values))
	if len(values) < period {
		return out
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}

	seed /= float64(period)
	out.Set(period-1, seed)

	alpha := 2.0 / (float64(period) + 1.0)
	prev := seed

	for i := period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out.Set(i, prev)
	}

	return out
}
