package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// vwapEpsilon guards against division by zero when a window has no volume.
const vwapEpsilon = 1e-8

// VWAP is a rolling windowed Volume Weighted Average Price over
// close * volume.
type VWAP struct{}

// NewVWAP creates a new VWAP indicator.
func NewVWAP() Indicator {
	return &VWAP{}
}

// Name returns the name of the indicator.
func (v *VWAP) Name() types.IndicatorType {
	return types.IndicatorTypeVWAP
}

// WarmUp implements the Indicator interface.
func (v *VWAP) WarmUp(params types.Params) (int, error) {
	period := params.Int("period", 20)
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, nil
}

// Compute implements the Indicator interface.
func (v *VWAP) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	period := params.Int("period", 20)
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	out := NewSeries(len(bars))

	var sumPV, sumV float64

	for i, bar := range bars {
		sumPV += bar.Close * bar.Volume
		sumV += bar.Volume

		if i >= period {
			sumPV -= bars[i-period].Close * bars[i-period].Volume
			sumV -= bars[i-period].Volume
		}

		if i >= period-1 {
			out.Set(i, sumPV/(sumV+vwapEpsilon))
		}
	}

	return map[string]Series{SeriesVWAP: out}, nil
}
