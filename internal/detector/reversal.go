package detector

import (
	"github.com/rxtech-lab/plantrade/internal/indicator"
	"github.com/rxtech-lab/plantrade/internal/types"
)

// reversalDefaults are the default parameters for the reversal detector.
var reversalDefaults = types.Params{
	"rsi_window":     14,
	"bb_window":      20,
	"bb_dev":         2.0,
	"rsi_oversold":   30.0,
	"rsi_overbought": 70.0,
	"body_pct_min":   0.5,
}

// Reversal fires long when RSI is oversold, the close sits at or below the
// lower Bollinger band and the candle body is substantial; short is the
// mirror condition against the upper band. Long and short are evaluated
// independently and unioned into one entry signal; direction is resolved
// separately via Directions.
type Reversal struct{}

// NewReversal returns the reversal detector spec.
func NewReversal() Spec {
	return Spec{
		Detector:      &Reversal{},
		DefaultParams: reversalDefaults,
		Indicators: map[types.IndicatorType]types.Params{
			types.IndicatorTypeRSI:            {"period": 14},
			types.IndicatorTypeBollingerBands: {"period": 20, "dev_factor": 2.0},
			types.IndicatorTypeATR:            {"period": 14},
		},
	}
}

// Name implements the Detector interface.
func (r *Reversal) Name() string {
	return string(types.StrategyTypeReversal)
}

// Detect implements the Detector interface.
func (r *Reversal) Detect(bars []types.MarketData, params types.Params) ([]bool, error) {
	long, short, err := r.sides(bars, params)
	if err != nil {
		return nil, err
	}

	signals := make([]bool, len(bars))
	for i := range signals {
		signals[i] = long[i] || short[i]
	}

	return signals, nil
}

// Directions returns +1 where only the long condition fires, -1 where only
// the short condition fires and 0 elsewhere.
func (r *Reversal) Directions(bars []types.MarketData, params types.Params) ([]int, error) {
	long, short, err := r.sides(bars, params)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(bars))

	for i := range out {
		switch {
		case long[i] && !short[i]:
			out[i] = 1
		case short[i] && !long[i]:
			out[i] = -1
		}
	}

	return out, nil
}

func (r *Reversal) sides(bars []types.MarketData, params types.Params) (long, short []bool, err error) {
	p := params.Merged(reversalDefaults)

	rsiWindow := p.Int("rsi_window", 14)
	bbWindow := p.Int("bb_window", 20)
	bbDev := p.Float("bb_dev", 2.0)
	oversold := p.Float("rsi_oversold", 30)
	overbought := p.Float("rsi_overbought", 70)
	bodyPctMin := p.Float("body_pct_min", 0.5)

	rsiOut, err := indicator.NewRSI().Compute(bars, types.Params{"period": rsiWindow})
	if err != nil {
		return nil, nil, err
	}

	bbOut, err := indicator.NewBollingerBands().Compute(bars, types.Params{
		"period":     bbWindow,
		"dev_factor": bbDev,
	})
	if err != nil {
		return nil, nil, err
	}

	rsi := rsiOut[indicator.SeriesRSI]
	bbTop := bbOut[indicator.SeriesBBTop]
	bbBot := bbOut[indicator.SeriesBBBot]

	long = make([]bool, len(bars))
	short = make([]bool, len(bars))

	for i, bar := range bars {
		rsiV, rsiOK := rsi.Value(i)
		topV, topOK := bbTop.Value(i)
		botV, botOK := bbBot.Value(i)

		// Bars inside the warm-up window never fire.
		if !rsiOK || !topOK || !botOK {
			continue
		}

		body := bodyProportion(bar)
		long[i] = rsiV < oversold && bar.Close <= botV && body >= bodyPctMin
		short[i] = rsiV > overbought && bar.Close >= topV && body >= bodyPctMin
	}

	return long, short, nil
}
