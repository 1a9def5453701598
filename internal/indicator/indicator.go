package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/types"
)

// Context series names produced by the built-in indicators.
const (
	SeriesATR        = "atr"
	SeriesRSI        = "rsi"
	SeriesEMA        = "ema"
	SeriesSMA        = "sma"
	SeriesVWAP       = "vwap"
	SeriesMACD       = "macd"
	SeriesMACDSignal = "macd_signal"
	SeriesMACDHist   = "macd_hist"
	SeriesBBTop      = "bb_top"
	SeriesBBMid      = "bb_mid"
	SeriesBBBot      = "bb_bot"
)

// Indicator interface defines methods that any technical indicator must implement.
// Compute returns the indicator's named output series, each aligned with the
// input bars; multi-output indicators (MACD, Bollinger Bands) return several
// entries.
type Indicator interface {
	// Name returns the name of the indicator.
	Name() types.IndicatorType
	// WarmUp returns the number of leading bars that may be unavailable for
	// the given parameters.
	WarmUp(params types.Params) (int, error)
	// Compute calculates the indicator over the full bar sequence.
	Compute(bars []types.MarketData, params types.Params) (map[string]Series, error)
}

func closes(bars []types.MarketData) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}

	return out
}
