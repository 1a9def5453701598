package types

import (
	"time"

	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// MarketData is one OHLCV bar at a point in time. Bars are immutable once
// ingested; sequences are ascending in time with no duplicate timestamps.
type MarketData struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// TradeDate returns the calendar date of the bar in the bar's location.
func (m MarketData) TradeDate() string {
	return m.Time.Format("2006-01-02")
}

// ValidateBars checks that a bar sequence is strictly ascending in time with
// no duplicate timestamps.
func ValidateBars(bars []MarketData) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeUnorderedData,
				"bars out of order at index %d: %s !> %s",
				i, bars[i].Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}
