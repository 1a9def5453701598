package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// StrategyType selects the entry detector for a plan.
type StrategyType string

const (
	StrategyTypeBreakout StrategyType = "breakout"
	StrategyTypePullback StrategyType = "pullback"
	StrategyTypeReversal StrategyType = "reversal"
)

// Direction is the side of a planned trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// TrailingMethod selects how the trailing stop is recomputed per bar.
type TrailingMethod string

const (
	TrailingMethodATR  TrailingMethod = "atr"
	TrailingMethodEMA  TrailingMethod = "ema"
	TrailingMethodNone TrailingMethod = "none"
)

// EntryConfig is either a detector reference with parameters or a legacy
// rule string (restricted infix boolean expression over named context
// variables). When both are present the detector is tried first and the rule
// serves as the fallback path.
type EntryConfig struct {
	Detector string `yaml:"detector" json:"detector"`
	Params   Params `yaml:"params" json:"params"`
	Rule     string `yaml:"rule" json:"rule"`
}

// TakeProfitLevel is one partial-exit bucket. SizePct is the percentage of
// the original position size to close when Price is reached.
type TakeProfitLevel struct {
	Price   float64 `yaml:"price" json:"price" validate:"required,gt=0"`
	SizePct float64 `yaml:"size_pct" json:"size_pct" validate:"required,gt=0,lte=100"`
}

// TrailingConfig describes the trailing-stop behavior once a position is open.
type TrailingConfig struct {
	Method     TrailingMethod `yaml:"method" json:"method" validate:"omitempty,oneof=atr ema none"`
	Period     int            `yaml:"period" json:"period" validate:"gte=0"`
	Multiplier float64        `yaml:"multiplier" json:"multiplier" validate:"gte=0"`
}

// RiskConfig holds the protective stop, take-profit buckets and trailing
// configuration for a plan. EntryPrice is the planned entry reference used to
// validate the stop direction before any simulation starts.
type RiskConfig struct {
	EntryPrice  float64           `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	StopPrice   float64           `yaml:"stop_price" json:"stop_price" validate:"required,gt=0"`
	TakeProfits []TakeProfitLevel `yaml:"take_profits" json:"take_profits" validate:"dive"`
	Trailing    TrailingConfig    `yaml:"trailing" json:"trailing"`
}

// SizingConfig controls position sizing as a percentage of equity risked per
// trade.
type SizingConfig struct {
	RiskPct float64 `yaml:"risk_pct" json:"risk_pct" validate:"required,gt=0,lte=100"`
}

// Plan is the normalized, validated description of how to trade one symbol on
// one day. It is produced upstream and consumed by the backtest engine.
type Plan struct {
	Symbol       string                   `yaml:"symbol" json:"symbol" validate:"required"`
	Date         string                   `yaml:"date" json:"date"`
	StrategyType StrategyType             `yaml:"strategy_type" json:"strategy_type" validate:"required"`
	Direction    Direction                `yaml:"direction" json:"direction" validate:"omitempty,oneof=long short"`
	Indicators   map[IndicatorType]Params `yaml:"indicators" json:"indicators"`
	Entry        EntryConfig              `yaml:"entry" json:"entry"`
	Risk         RiskConfig               `yaml:"risk" json:"risk"`
	Sizing       SizingConfig             `yaml:"sizing" json:"sizing"`
}

// Normalize fills defaulted fields in place: direction defaults to long and
// trailing method defaults to none.
func (p *Plan) Normalize() {
	if p.Direction == "" {
		p.Direction = DirectionLong
	}

	if p.Risk.Trailing.Method == "" {
		p.Risk.Trailing.Method = TrailingMethodNone
	}
}

// Validate checks the plan against its struct tags and the stop/entry
// direction invariant. It must be called (and pass) before any simulated
// trading begins; a violation is a typed validation failure, never a runtime
// data error.
func (p *Plan) Validate() error {
	p.Normalize()

	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPlan, "invalid plan", err)
	}

	switch p.Direction {
	case DirectionLong:
		if p.Risk.StopPrice >= p.Risk.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidStopLoss,
				"long plan requires stop (%.4f) below entry (%.4f)",
				p.Risk.StopPrice, p.Risk.EntryPrice)
		}
	case DirectionShort:
		if p.Risk.StopPrice <= p.Risk.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidStopLoss,
				"short plan requires stop (%.4f) above entry (%.4f)",
				p.Risk.StopPrice, p.Risk.EntryPrice)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidDirection, "unknown direction %q", p.Direction)
	}

	if p.Risk.Trailing.Method != TrailingMethodNone && p.Risk.Trailing.Period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidTrailing,
			"trailing method %q requires a positive period", p.Risk.Trailing.Method)
	}

	if p.Risk.Trailing.Method == TrailingMethodATR && p.Risk.Trailing.Multiplier <= 0 {
		return errors.New(errors.ErrCodeInvalidMultiplier,
			"atr trailing requires a positive multiplier")
	}

	return nil
}
