package detector

import (
	"github.com/rxtech-lab/plantrade/internal/indicator"
	"github.com/rxtech-lab/plantrade/internal/types"
)

// pullbackDefaults are the default parameters for the pullback detector.
var pullbackDefaults = types.Params{
	"bb_window":  20,
	"bb_dev":     2.0,
	"rsi_window": 14,
	"rsi_max":    35.0,
}

// Pullback fires when price sits at or below the lower Bollinger band, RSI is
// at or below a ceiling and the MACD histogram is rising versus the prior
// bar.
type Pullback struct{}

// NewPullback returns the pullback detector spec.
func NewPullback() Spec {
	return Spec{
		Detector:      &Pullback{},
		DefaultParams: pullbackDefaults,
		Indicators: map[types.IndicatorType]types.Params{
			types.IndicatorTypeRSI:            {"period": 14},
			types.IndicatorTypeBollingerBands: {"period": 20, "dev_factor": 2.0},
			types.IndicatorTypeMACD:           {"fast": 12, "slow": 26, "signal": 9},
		},
	}
}

// Name implements the Detector interface.
func (p *Pullback) Name() string {
	return string(types.StrategyTypePullback)
}

// Detect implements the Detector interface.
func (p *Pullback) Detect(bars []types.MarketData, params types.Params) ([]bool, error) {
	merged := params.Merged(pullbackDefaults)

	bbWindow := merged.Int("bb_window", 20)
	bbDev := merged.Float("bb_dev", 2.0)
	rsiWindow := merged.Int("rsi_window", 14)
	rsiMax := merged.Float("rsi_max", 35)

	rsiOut, err := indicator.NewRSI().Compute(bars, types.Params{"period": rsiWindow})
	if err != nil {
		return nil, err
	}

	bbOut, err := indicator.NewBollingerBands().Compute(bars, types.Params{
		"period":     bbWindow,
		"dev_factor": bbDev,
	})
	if err != nil {
		return nil, err
	}

	macdOut, err := indicator.NewMACD().Compute(bars, types.Params{})
	if err != nil {
		return nil, err
	}

	rsi := rsiOut[indicator.SeriesRSI]
	bbBot := bbOut[indicator.SeriesBBBot]
	hist := macdOut[indicator.SeriesMACDHist]

	signals := make([]bool, len(bars))

	for i, bar := range bars {
		rsiV, rsiOK := rsi.Value(i)
		botV, botOK := bbBot.Value(i)
		histV, histOK := hist.Value(i)
		prevHistV, prevHistOK := hist.Value(i - 1)

		if !rsiOK || !botOK || !histOK || !prevHistOK {
			continue
		}

		signals[i] = bar.Close <= botV && rsiV <= rsiMax && histV > prevHistV
	}

	return signals, nil
}
