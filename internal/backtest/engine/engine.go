package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/marketdata"
)

// PlanSource produces at most one plan per symbol per day. It is the
// collaborator contract for the upstream multi-agent pipeline; returning None
// is a valid outcome (the day simulates as no_plan).
type PlanSource interface {
	ProducePlan(ctx context.Context, symbol string, date time.Time) (optional.Option[types.Plan], error)
}

// Engine drives plan-driven backtests over single days and date ranges.
type Engine interface {
	// Initialize parses the YAML engine configuration.
	Initialize(config string) error
	// SetDataProvider sets the market-data collaborator used by RunRange.
	SetDataProvider(provider marketdata.Provider) error
	// RunSingle simulates one plan over the bar history of one trade date
	// (plus a warm-up prefix). An absent plan is a defined no-op.
	RunSingle(symbol string, plan optional.Option[types.Plan], bars []types.MarketData) (types.BacktestResult, error)
	// RunRange iterates business days in [start, end], producing one plan
	// and one result per day. A bad day never terminates the range.
	RunRange(ctx context.Context, symbol string, start, end time.Time, source PlanSource) ([]types.BacktestResult, error)
}
