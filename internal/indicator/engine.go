package indicator

import (
	"github.com/rxtech-lab/plantrade/internal/logger"
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
	"go.uber.org/zap"
)

// Engine computes the indicators a plan actually references. Indicators that
// no spec names are never computed, and an unsupported indicator name is a
// typed error that aborts the backtest for that plan.
type Engine struct {
	registry Registry
	log      *logger.Logger
}

// NewEngine creates an indicator engine backed by the given registry.
func NewEngine(registry Registry, log *logger.Logger) *Engine {
	return &Engine{
		registry: registry,
		log:      log,
	}
}

// ComputeSpecs computes every referenced indicator over the bar sequence and
// merges the named output series into one evaluation context. Later specs do
// not overwrite earlier outputs of the same name; series names of the
// built-ins are disjoint.
func (e *Engine) ComputeSpecs(bars []types.MarketData, specs map[types.IndicatorType]types.Params) (map[string]Series, error) {
	context := make(map[string]Series)

	for name, params := range specs {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorNotFound, err,
				"plan references unsupported indicator %q", name)
		}

		outputs, err := ind.Compute(bars, params)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err,
				"failed to compute indicator %q", name)
		}

		for seriesName, series := range outputs {
			if _, exists := context[seriesName]; !exists {
				context[seriesName] = series
			}
		}

		e.log.Debug("indicator computed",
			zap.String("indicator", string(name)),
			zap.Int("bars", len(bars)),
		)
	}

	return context, nil
}

// WarmUpBars returns the number of leading bars the given specs need before
// every referenced indicator has a defined value. The orchestrator uses this
// to request a sufficiently wide historical window before the trade date.
func (e *Engine) WarmUpBars(specs map[types.IndicatorType]types.Params) (int, error) {
	maxWarmUp := 0

	for name, params := range specs {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodeIndicatorNotFound, err,
				"plan references unsupported indicator %q", name)
		}

		warmUp, err := ind.WarmUp(params)
		if err != nil {
			return 0, err
		}

		if warmUp > maxWarmUp {
			maxWarmUp = warmUp
		}
	}

	return maxWarmUp, nil
}
