package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an executed order with its realized profit and loss.
type Trade struct {
	Order         Order     `yaml:"order" json:"order"`
	ExecutedAt    time.Time `yaml:"executed_at" json:"executed_at" csv:"executed_at"`
	ExecutedQty   float64   `yaml:"executed_qty" json:"executed_qty" csv:"executed_qty"`
	ExecutedPrice float64   `yaml:"executed_price" json:"executed_price" csv:"executed_price"`
	Fee           float64   `yaml:"fee" json:"fee" csv:"fee"`
	// PnL is the realized profit and loss for this trade. Entries carry zero;
	// exits carry (exit - avg entry) * qty for longs and the mirror for shorts,
	// net of fees.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// Position is the ledger aggregate of current holdings for one symbol.
type Position struct {
	Symbol           string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Direction        Direction `yaml:"direction" json:"direction" csv:"direction"`
	OpenQuantity     float64   `yaml:"open_quantity" json:"open_quantity" csv:"open_quantity"`
	TotalInQuantity  float64   `yaml:"total_in_quantity" json:"total_in_quantity" csv:"total_in_quantity"`
	TotalInAmount    float64   `yaml:"total_in_amount" json:"total_in_amount" csv:"total_in_amount"`
	TotalOutQuantity float64   `yaml:"total_out_quantity" json:"total_out_quantity" csv:"total_out_quantity"`
	TotalOutAmount   float64   `yaml:"total_out_amount" json:"total_out_amount" csv:"total_out_amount"`
	TotalFees        float64   `yaml:"total_fees" json:"total_fees" csv:"total_fees"`
	OpenTimestamp    time.Time `yaml:"open_timestamp" json:"open_timestamp" csv:"open_timestamp"`
	StrategyName     string    `yaml:"strategy_name" json:"strategy_name" csv:"strategy_name"`
}

// GetAverageEntryPrice calculates the average entry price including fees paid
// on entries.
func (p *Position) GetAverageEntryPrice() float64 {
	if p.TotalInQuantity == 0 {
		return 0
	}

	return p.TotalInAmount / p.TotalInQuantity
}

// GetRealizedPnL computes the realized profit and loss of the closed part of
// the position using decimal arithmetic.
func (p *Position) GetRealizedPnL() float64 {
	if p.TotalInQuantity == 0 || p.TotalOutQuantity == 0 {
		return 0
	}

	entry := decimal.NewFromFloat(p.TotalOutQuantity).Mul(decimal.NewFromFloat(p.GetAverageEntryPrice()))
	exit := decimal.NewFromFloat(p.TotalOutAmount)

	var result decimal.Decimal
	if p.Direction == DirectionShort {
		// exit price below entry is profit for a short
		result = entry.Sub(exit)
	} else {
		result = exit.Sub(entry)
	}

	value, _ := result.Sub(decimal.NewFromFloat(p.TotalFees)).Float64()

	return value
}
