package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// BollingerBands produces the middle band (SMA of closes), the upper band
// (mid + dev_factor * rolling std) and the lower band (mid - dev_factor *
// rolling std).
type BollingerBands struct{}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands() Indicator {
	return &BollingerBands{}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// WarmUp implements the Indicator interface.
func (b *BollingerBands) WarmUp(params types.Params) (int, error) {
	period, _, err := bollingerParams(params)
	if err != nil {
		return 0, err
	}

	return period, nil
}

// Compute implements the Indicator interface.
func (b *BollingerBands) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	period, devFactor, err := bollingerParams(params)
	if err != nil {
		return nil, err
	}

	prices := closes(bars)
	mid := rollingMean(prices, period)
	std := rollingStd(prices, period)

	top := NewSeries(len(bars))
	bot := NewSeries(len(bars))

	for i := range bars {
		m, mok := mid.Value(i)
		s, sok := std.Value(i)

		if mok && sok {
			top.Set(i, m+devFactor*s)
			bot.Set(i, m-devFactor*s)
		}
	}

	return map[string]Series{
		SeriesBBTop: top,
		SeriesBBMid: mid,
		SeriesBBBot: bot,
	}, nil
}

func bollingerParams(params types.Params) (int, float64, error) {
	period := params.Int("period", 20)
	if period <= 0 {
		return 0, 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	devFactor := params.Float("dev_factor", 2.0)
	if devFactor <= 0 {
		return 0, 0, errors.Newf(errors.ErrCodeInvalidParameter, "dev_factor must be positive, got %f", devFactor)
	}

	return period, devFactor, nil
}
