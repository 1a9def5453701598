package types

import (
	"os"
	"time"

	"github.com/rxtech-lab/plantrade/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BacktestStatus tags the outcome of one simulated day.
type BacktestStatus string

const (
	// BacktestStatusOK means the simulation ran over the full bar sequence.
	BacktestStatusOK BacktestStatus = "ok"
	// BacktestStatusNoData means no bars were available for the requested day.
	BacktestStatusNoData BacktestStatus = "no_data"
	// BacktestStatusNoPlan means no actionable plan existed for the day. This
	// is a valid neutral outcome, not a failure.
	BacktestStatusNoPlan BacktestStatus = "no_plan"
)

// TradeStats summarizes the trades of one simulation run.
type TradeStats struct {
	NumberOfTrades        int     `yaml:"number_of_trades" json:"number_of_trades"`
	NumberOfWinningTrades int     `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	NumberOfLosingTrades  int     `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	WinRate               float64 `yaml:"win_rate" json:"win_rate"`
	RealizedPnL           float64 `yaml:"realized_pnl" json:"realized_pnl"`
	MaximumLoss           float64 `yaml:"maximum_loss" json:"maximum_loss"`
	MaximumProfit         float64 `yaml:"maximum_profit" json:"maximum_profit"`
	TotalFees             float64 `yaml:"total_fees" json:"total_fees"`
}

// BacktestResult is the report of one simulated day for one symbol.
// Field keys are stable: status, final_value, net_return, max_drawdown,
// trade_analysis, strategy_applied.
type BacktestResult struct {
	ID              string         `yaml:"id" json:"id"`
	Timestamp       time.Time      `yaml:"timestamp" json:"timestamp"`
	Symbol          string         `yaml:"symbol" json:"symbol"`
	Date            string         `yaml:"date" json:"date"`
	Status          BacktestStatus `yaml:"status" json:"status"`
	FinalValue      float64        `yaml:"final_value" json:"final_value"`
	NetReturn       float64        `yaml:"net_return" json:"net_return"`
	MaxDrawdown     float64        `yaml:"max_drawdown" json:"max_drawdown"`
	TradeAnalysis   TradeStats     `yaml:"trade_analysis" json:"trade_analysis"`
	StrategyApplied *Plan          `yaml:"strategy_applied,omitempty" json:"strategy_applied,omitempty"`
}

// WriteBacktestResult writes the result to path as YAML.
func WriteBacktestResult(path string, result BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to marshal result", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to write result", err)
	}

	return nil
}
