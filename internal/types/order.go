package types

import "time"

// PurchaseType is the side of an order.
type PurchaseType string

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

// Order reasons recorded in the ledger.
const (
	OrderReasonEntrySignal  string = "entry_signal"
	OrderReasonTakeProfit   string = "take_profit"
	OrderReasonTrailingStop string = "trailing_stop"
	OrderReasonFixedStop    string = "fixed_stop"
	OrderReasonEODFlatten   string = "eod_flatten"
)

// Reason records why an order was placed.
type Reason struct {
	Reason  string `yaml:"reason" json:"reason" csv:"reason"`
	Message string `yaml:"message" json:"message" csv:"message"`
}

// Order is a fill request recorded against the ledger. In the backtest every
// order fills immediately at its price; resting protective stops are tracked
// by the state machine, not as pending orders.
type Order struct {
	OrderID      string       `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol       string       `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side         PurchaseType `yaml:"side" json:"side" csv:"side"`
	Quantity     float64      `yaml:"quantity" json:"quantity" csv:"quantity"`
	Price        float64      `yaml:"price" json:"price" csv:"price"`
	Timestamp    time.Time    `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
	Reason       Reason       `yaml:"reason" json:"reason" csv:"reason"`
	StrategyName string       `yaml:"strategy_name" json:"strategy_name" csv:"strategy_name"`
	Fee          float64      `yaml:"fee" json:"fee" csv:"fee"`
	PositionType Direction    `yaml:"position_type" json:"position_type" csv:"position_type"`
}
