// Package mocks provides deterministic market-data fixtures for tests.
package mocks

import (
	"time"

	"github.com/rxtech-lab/plantrade/internal/types"
)

// BarShape selects the price path produced by GenerateBars.
type BarShape string

const (
	// ShapeFlat holds price near the base with small candles.
	ShapeFlat BarShape = "flat"
	// ShapeTrendUp climbs steadily from the base.
	ShapeTrendUp BarShape = "trend_up"
	// ShapeTrendDown falls steadily from the base.
	ShapeTrendDown BarShape = "trend_down"
)

// GenerateBars produces n hourly bars for one trade date starting at 09:30
// UTC. The path is fully determined by the arguments, so tests get identical
// series on every run.
func GenerateBars(symbol string, date time.Time, n int, base float64, shape BarShape) []types.MarketData {
	bars := make([]types.MarketData, n)
	start := time.Date(date.Year(), date.Month(), date.Day(), 9, 30, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		var drift float64

		switch shape {
		case ShapeTrendUp:
			drift = float64(i) * base * 0.002
		case ShapeTrendDown:
			drift = -float64(i) * base * 0.002
		default:
			if i%2 == 0 {
				drift = base * 0.0005
			} else {
				drift = -base * 0.0005
			}
		}

		open := base + drift
		close := open + base*0.001
		if shape == ShapeTrendDown {
			close = open - base*0.001
		}

		high := maxFloat(open, close) + base*0.0005
		low := minFloat(open, close) - base*0.0005

		bars[i] = types.MarketData{
			Symbol: symbol,
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1000 + float64(i%5)*100,
		}
	}

	return bars
}

// GenerateBreakoutDay produces a two-day series: a quiet previous session
// topping out at prevHigh, then a trade date whose later bars break above it
// on expanded volume with wide-bodied candles.
func GenerateBreakoutDay(symbol string, prevDate, date time.Time, prevHigh float64) []types.MarketData {
	prev := GenerateBars(symbol, prevDate, 6, prevHigh*0.99, ShapeFlat)
	// pin the previous session high exactly
	prev[3].High = prevHigh

	bars := GenerateBars(symbol, date, 6, prevHigh*0.995, ShapeFlat)
	for i := 4; i < 6; i++ {
		open := prevHigh * 1.001
		close := prevHigh * 1.008
		bars[i].Open = open
		bars[i].Close = close
		bars[i].High = close * 1.001
		bars[i].Low = open * 0.999
		bars[i].Volume = 5000
	}

	return append(prev, bars...)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}
