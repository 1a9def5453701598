package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation over closes.
// The first period outputs are treated as warm-up and reported unavailable;
// callers that need earlier values should widen the historical window instead.
type EMA struct{}

// NewEMA creates a new EMA indicator.
func NewEMA() Indicator {
	return &EMA{}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// WarmUp implements the Indicator interface.
func (e *EMA) WarmUp(params types.Params) (int, error) {
	period := params.Int("period", 8)
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, nil
}

// Compute implements the Indicator interface.
func (e *EMA) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	period := params.Int("period", 8)
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return map[string]Series{SeriesEMA: emaSeries(closes(bars), period)}, nil
}
