package types

// IndicatorType identifies a technical indicator by name.
type IndicatorType string

const (
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeVWAP           IndicatorType = "vwap"
)
