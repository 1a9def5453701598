package engine

import (
	"math"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/internal/utils"
)

// tradeState tracks one open position inside a simulated day: remaining size,
// take-profit buckets, the protective stop level and the high-water mark used
// for trailing.
type tradeState struct {
	direction   types.Direction
	entryPrice  float64
	entryTime   int
	initialSize float64
	openSize    float64
	// stopLevel starts at the plan's fixed stop and only ever tightens toward
	// price. A proposed level that would loosen the stop is ignored.
	stopLevel float64
	// highWaterMark is the best close seen since entry (lowest close for a
	// short).
	highWaterMark float64
	tpFired       []bool
	precision     int
}

func newTradeState(plan *types.Plan, entryPrice, size float64, barIndex, precision int) *tradeState {
	return &tradeState{
		direction:     plan.Direction,
		entryPrice:    entryPrice,
		entryTime:     barIndex,
		initialSize:   size,
		openSize:      size,
		stopLevel:     plan.Risk.StopPrice,
		highWaterMark: entryPrice,
		tpFired:       make([]bool, len(plan.Risk.TakeProfits)),
		precision:     precision,
	}
}

// observeClose advances the high-water mark with a new bar close.
func (t *tradeState) observeClose(close float64) {
	if t.direction == types.DirectionShort {
		t.highWaterMark = math.Min(t.highWaterMark, close)
	} else {
		t.highWaterMark = math.Max(t.highWaterMark, close)
	}
}

// tighten proposes a new stop level. The stop only moves toward price, never
// away from it.
func (t *tradeState) tighten(level float64) {
	if t.direction == types.DirectionShort {
		t.stopLevel = math.Min(t.stopLevel, level)
	} else {
		t.stopLevel = math.Max(t.stopLevel, level)
	}
}

// stopBreached reports whether the bar traded through the protective stop.
func (t *tradeState) stopBreached(bar types.MarketData) bool {
	if t.direction == types.DirectionShort {
		return bar.High >= t.stopLevel
	}

	return bar.Low <= t.stopLevel
}

// tpFill is one take-profit bucket that fired on the current bar.
type tpFill struct {
	price    float64
	quantity float64
}

// takeProfitFills returns the buckets reached by the bar, in plan order. Each
// bucket fires at most once for the life of the position; its quantity is a
// percentage of the original size, capped by what remains open.
func (t *tradeState) takeProfitFills(bar types.MarketData, levels []types.TakeProfitLevel) []tpFill {
	var fills []tpFill

	for i, level := range levels {
		if t.tpFired[i] || t.openSize <= 0 {
			continue
		}

		reached := bar.High >= level.Price
		if t.direction == types.DirectionShort {
			reached = bar.Low <= level.Price
		}

		if !reached {
			continue
		}

		qty := utils.RoundToDecimalPrecision(t.initialSize*level.SizePct/100, t.precision)
		if qty > t.openSize {
			qty = t.openSize
		}

		if qty <= 0 {
			t.tpFired[i] = true
			continue
		}

		t.tpFired[i] = true
		t.openSize -= qty
		fills = append(fills, tpFill{price: level.Price, quantity: qty})
	}

	return fills
}

// closeAll empties the position and returns the closed quantity.
func (t *tradeState) closeAll() float64 {
	qty := t.openSize
	t.openSize = 0

	return qty
}

// signedQuantity is the open size with direction applied, positive for longs
// and negative for shorts.
func (t *tradeState) signedQuantity() float64 {
	if t.direction == types.DirectionShort {
		return -t.openSize
	}

	return t.openSize
}

// exitSide is the order side that reduces this position.
func (t *tradeState) exitSide() types.PurchaseType {
	if t.direction == types.DirectionShort {
		return types.PurchaseTypeBuy
	}

	return types.PurchaseTypeSell
}

// entrySide is the order side that opened this position.
func (t *tradeState) entrySide() types.PurchaseType {
	if t.direction == types.DirectionShort {
		return types.PurchaseTypeSell
	}

	return types.PurchaseTypeBuy
}
