package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator. It
// produces the macd line (fast EMA - slow EMA), the signal line (EMA of the
// macd line) and the histogram (line - signal).
type MACD struct{}

// NewMACD creates a new MACD indicator.
func NewMACD() Indicator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// WarmUp implements the Indicator interface.
func (m *MACD) WarmUp(params types.Params) (int, error) {
	fast, slow, signal, err := macdPeriods(params)
	if err != nil {
		return 0, err
	}

	_ = fast

	return slow + signal, nil
}

// Compute implements the Indicator interface.
func (m *MACD) Compute(bars []types.MarketData, params types.Params) (map[string]Series, error) {
	fast, slow, signal, err := macdPeriods(params)
	if err != nil {
		return nil, err
	}

	prices := closes(bars)
	fastEMA := emaSeries(prices, fast)
	slowEMA := emaSeries(prices, slow)

	line := NewSeries(len(bars))

	// The macd line is defined where both EMAs are; collect its defined
	// values to seed the signal EMA.
	lineValues := make([]float64, 0, len(bars))
	lineStart := -1

	for i := range bars {
		f, fok := fastEMA.Value(i)
		s, sok := slowEMA.Value(i)

		if fok && sok {
			line.Set(i, f-s)

			if lineStart < 0 {
				lineStart = i
			}

			lineValues = append(lineValues, f-s)
		}
	}

	signalLine := NewSeries(len(bars))
	hist := NewSeries(len(bars))

	if lineStart >= 0 {
		signalValues := emaSeries(lineValues, signal)
		for j := range lineValues {
			if v, ok := signalValues.Value(j); ok {
				i := lineStart + j
				signalLine.Set(i, v)

				lineV, _ := line.Value(i)
				hist.Set(i, lineV-v)
			}
		}
	}

	return map[string]Series{
		SeriesMACD:       line,
		SeriesMACDSignal: signalLine,
		SeriesMACDHist:   hist,
	}, nil
}

func macdPeriods(params types.Params) (fast, slow, signal int, err error) {
	fast = params.Int("fast", 12)
	slow = params.Int("slow", 26)
	signal = params.Int("signal", 9)

	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd periods must be positive, got fast=%d slow=%d signal=%d", fast, slow, signal)
	}

	if fast >= slow {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd fast period (%d) must be below slow period (%d)", fast, slow)
	}

	return fast, slow, signal, nil
}
