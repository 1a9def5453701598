package detector

import (
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// breakoutDefaults are the default parameters for the breakout detector.
// previous_day_high has no default: it must be supplied at runtime from the
// data context.
var breakoutDefaults = types.Params{
	"volume_multiplier": 1.2,
	"window":            14,
	"min_body_pct":      0.5,
}

// Breakout fires when both the bar high and close exceed the previous day's
// high, volume exceeds the rolling average volume times a multiplier, and the
// candle body proportion exceeds a minimum. All four conditions are
// conjunctive.
type Breakout struct{}

// NewBreakout returns the breakout detector spec.
func NewBreakout() Spec {
	return Spec{
		Detector:      &Breakout{},
		DefaultParams: breakoutDefaults,
		Indicators: map[types.IndicatorType]types.Params{
			types.IndicatorTypeVWAP: {"period": 20},
			types.IndicatorTypeEMA:  {"period": 8},
			types.IndicatorTypeATR:  {"period": 14},
		},
	}
}

// Name implements the Detector interface.
func (b *Breakout) Name() string {
	return string(types.StrategyTypeBreakout)
}

// Detect implements the Detector interface.
func (b *Breakout) Detect(bars []types.MarketData, params types.Params) ([]bool, error) {
	p := params.Merged(breakoutDefaults)

	prevDayHigh, ok := p["previous_day_high"]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingParameter,
			"breakout detector requires previous_day_high from the data context")
	}

	previousDayHigh := types.Params{"v": prevDayHigh}.Float("v", 0)
	volumeMultiplier := p.Float("volume_multiplier", 1.2)
	window := p.Int("window", 14)
	minBodyPct := p.Float("min_body_pct", 0.5)

	signals := make([]bool, len(bars))

	var volSum float64

	for i, bar := range bars {
		volSum += bar.Volume
		if i >= window {
			volSum -= bars[i-window].Volume
		}

		// Rolling average volume with min_periods=1 semantics: early bars
		// average over what is available.
		n := i + 1
		if n > window {
			n = window
		}

		avgVolume := volSum / float64(n)

		signals[i] = bar.High > previousDayHigh &&
			bar.Close > previousDayHigh &&
			bar.Volume > avgVolume*volumeMultiplier &&
			bodyProportion(bar) > minBodyPct
	}

	return signals, nil
}
