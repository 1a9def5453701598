package indicator

import (
	"math"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// ATR represents the Average True Range indicator: a rolling mean of the
// true range. The first bar has no previous close, so values become
// available after period+1 bars.
type ATR struct{}

// NewATR creates a new ATR indicator.
func NewATR() Indicator {
	return &ATR{}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// WarmUp implements the Indicator interface.
func (a *ATR) WarmUp(params types.Params) (int, error) {
	period := params.Int("period", 14)
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period + 1, nil
}

// Compute implements the Indicator interface.
func (a *ATR) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	period := params.Int("period", 14)
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	out := NewSeries(len(bars))
	if len(bars) <= period {
		return map[string]Series{SeriesATR: out}, nil
	}

	// True range per bar, defined from index 1.
	tr := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		tr[i] = trueRange(bars[i], bars[i-1].Close)
	}

	var sum float64

	for i := 1; i < len(bars); i++ {
		sum += tr[i]
		if i > period {
			sum -= tr[i-period]
		}

		if i >= period {
			out.Set(i, sum/float64(period))
		}
	}

	return map[string]Series{SeriesATR: out}, nil
}

func trueRange(bar types.MarketData, prevClose float64) float64 {
	return math.Max(
		math.Max(
			bar.High-bar.Low,
			math.Abs(bar.High-prevClose),
		),
		math.Abs(bar.Low-prevClose),
	)
}
