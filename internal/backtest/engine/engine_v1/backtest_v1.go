package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	backtest "github.com/rxtech-lab/plantrade/internal/backtest/engine"
	"github.com/rxtech-lab/plantrade/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/plantrade/internal/detector"
	"github.com/rxtech-lab/plantrade/internal/indicator"
	"github.com/rxtech-lab/plantrade/internal/logger"
	"github.com/rxtech-lab/plantrade/internal/rule"
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/internal/utils"
	"github.com/rxtech-lab/plantrade/pkg/errors"
	"github.com/rxtech-lab/plantrade/pkg/marketdata"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// sizingEpsilon guards the division in position sizing against a stop placed
// exactly at the entry price.
const sizingEpsilon = 1e-8

type BacktestEngineV1 struct {
	config           Config
	log              *logger.Logger
	indicatorEngine  *indicator.Engine
	detectorRegistry *detector.Registry
	state            *BacktestState
	provider         marketdata.Provider
	commission       commission_fee.CommissionFee
}

func NewBacktestEngineV1() backtest.Engine {
	return &BacktestEngineV1{
		config: DefaultConfig(),
	}
}

// Initialize implements backtest.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	b.config = DefaultConfig()

	err := yaml.Unmarshal([]byte(config), &b.config)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse config", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	b.log, err = logger.NewLogger()
	if err != nil {
		return err
	}

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", b.config.InitialCapital),
		zap.String("broker", string(b.config.Broker)),
	)

	b.indicatorEngine = indicator.NewEngine(indicator.NewDefaultRegistry(), b.log)
	b.detectorRegistry = detector.NewDefaultRegistry()
	b.commission = commission_fee.GetCommissionFeeHandler(b.config.Broker)

	b.state = NewBacktestState(b.log)
	if b.state == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "failed to create ledger")
	}

	if err := b.state.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to initialize ledger", err)
	}

	return nil
}

// SetDataProvider implements backtest.Engine.
func (b *BacktestEngineV1) SetDataProvider(provider marketdata.Provider) error {
	if provider == nil {
		return errors.New(errors.ErrCodeInvalidProvider, "data provider must not be nil")
	}

	b.provider = provider

	return nil
}

// State exposes the trade ledger of the most recent run.
func (b *BacktestEngineV1) State() *BacktestState {
	return b.state
}

// RunSingle implements backtest.Engine. It replays the bar sequence for one
// trade date, applying the plan's entry, risk and sizing rules. Bars before
// the trade date serve as indicator warm-up and previous-day context only; no
// trading happens on them.
func (b *BacktestEngineV1) RunSingle(symbol string, planOpt optional.Option[types.Plan], bars []types.MarketData) (types.BacktestResult, error) {
	result := types.BacktestResult{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Symbol:     symbol,
		Status:     types.BacktestStatusOK,
		FinalValue: b.config.InitialCapital,
	}

	if planOpt.IsNone() {
		result.Status = types.BacktestStatusNoPlan
		if len(bars) > 0 {
			result.Date = bars[len(bars)-1].TradeDate()
		}

		return result, nil
	}

	plan := planOpt.Unwrap()
	result.Date = plan.Date
	result.StrategyApplied = &plan

	if len(bars) == 0 {
		result.Status = types.BacktestStatusNoData
		return result, nil
	}

	if err := plan.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	if err := types.ValidateBars(bars); err != nil {
		return types.BacktestResult{}, err
	}

	tradeDate := plan.Date
	if tradeDate == "" {
		tradeDate = bars[len(bars)-1].TradeDate()
	}
	result.Date = tradeDate

	if !hasBarsOn(bars, tradeDate) {
		result.Status = types.BacktestStatusNoData
		return result, nil
	}

	if err := b.state.Cleanup(); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to reset ledger", err)
	}

	specs := b.indicatorSpecs(&plan)

	seriesCtx, err := b.indicatorEngine.ComputeSpecs(bars, specs)
	if err != nil {
		return types.BacktestResult{}, err
	}

	signals := b.entrySignals(&plan, bars, seriesCtx)

	if err := b.simulate(symbol, &plan, bars, tradeDate, seriesCtx, signals, &result); err != nil {
		return types.BacktestResult{}, err
	}

	stats, err := b.state.GetStats(symbol)
	if err != nil {
		return types.BacktestResult{}, err
	}
	result.TradeAnalysis = stats

	return result, nil
}

// RunRange implements backtest.Engine. Weekends are skipped; a failing day is
// logged and skipped rather than terminating the range. Each day restarts
// from the configured initial capital.
func (b *BacktestEngineV1) RunRange(ctx context.Context, symbol string, start, end time.Time, source backtest.PlanSource) ([]types.BacktestResult, error) {
	if b.provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "RunRange requires a data provider")
	}

	if source == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "RunRange requires a plan source")
	}

	var results []types.BacktestResult

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		dayStr := day.Format("2006-01-02")

		planOpt, err := source.ProducePlan(ctx, symbol, day)
		if err != nil {
			b.log.Warn("Skipping day: plan source failed",
				zap.String("symbol", symbol),
				zap.String("date", dayStr),
				zap.Error(err),
			)

			continue
		}

		// the iterated day is the authoritative trade date; the plan never
		// retargets another session
		warmBars := 0
		if planOpt.IsSome() {
			plan := planOpt.Unwrap()
			plan.Date = dayStr
			planOpt = optional.Some(plan)

			warmBars, err = b.indicatorEngine.WarmUpBars(b.indicatorSpecs(&plan))
			if err != nil {
				b.log.Warn("Skipping day: invalid indicator requirements",
					zap.String("symbol", symbol),
					zap.String("date", dayStr),
					zap.Error(err),
				)

				continue
			}
		}

		bars, err := b.fetchWithWarmup(ctx, symbol, day, warmBars)
		if err != nil {
			b.log.Warn("Skipping day: failed to fetch bars",
				zap.String("symbol", symbol),
				zap.String("date", dayStr),
				zap.Error(err),
			)

			continue
		}

		dayBars := barsThrough(bars, dayStr)

		result, err := b.RunSingle(symbol, planOpt, dayBars)
		if err != nil {
			b.log.Warn("Skipping day: simulation failed",
				zap.String("symbol", symbol),
				zap.String("date", dayStr),
				zap.Error(err),
			)

			continue
		}

		result.Date = dayStr
		results = append(results, result)
	}

	return results, nil
}

// fetchWithWarmup fetches the trade day plus enough history to cover the
// plan's indicator warm-up. The window starts at the configured warm-up days
// and doubles, up to a bound, while the prefix is still too short.
func (b *BacktestEngineV1) fetchWithWarmup(ctx context.Context, symbol string, day time.Time, warmBars int) ([]types.MarketData, error) {
	dayStr := day.Format("2006-01-02")
	warmupDays := b.config.WarmupDays
	maxWarmupDays := warmupDays * 8

	for {
		windowStart := day.AddDate(0, 0, -warmupDays)
		windowEnd := day.AddDate(0, 0, 1)

		bars, err := b.provider.FetchBars(ctx, symbol, windowStart, windowEnd, b.config.Interval)
		if err != nil {
			return nil, err
		}

		prefix := 0
		for _, bar := range bars {
			if bar.TradeDate() < dayStr {
				prefix++
			}
		}

		if prefix >= warmBars || warmupDays >= maxWarmupDays {
			if prefix < warmBars {
				b.log.Warn("History shorter than the plan's indicator warm-up",
					zap.String("symbol", symbol),
					zap.String("date", dayStr),
					zap.Int("have", prefix),
					zap.Int("need", warmBars),
				)
			}

			return bars, nil
		}

		warmupDays *= 2
	}
}

// hasBarsOn reports whether any bar falls on the given trade date.
func hasBarsOn(bars []types.MarketData, tradeDate string) bool {
	for _, bar := range bars {
		if bar.TradeDate() == tradeDate {
			return true
		}
	}

	return false
}

// barsThrough drops bars after the given trade date. The provider window may
// overrun into the next session depending on the interval granularity.
func barsThrough(bars []types.MarketData, tradeDate string) []types.MarketData {
	out := bars
	for len(out) > 0 && out[len(out)-1].TradeDate() > tradeDate {
		out = out[:len(out)-1]
	}

	return out
}

// detectorName resolves which detector a plan refers to. An explicit entry
// detector wins over the strategy type.
func detectorName(plan *types.Plan) string {
	if plan.Entry.Detector != "" {
		return plan.Entry.Detector
	}

	return string(plan.StrategyType)
}

// indicatorSpecs merges the indicator requirements of the plan, its strategy's
// detector, and the trailing-stop method. Plan parameters win over detector
// defaults.
func (b *BacktestEngineV1) indicatorSpecs(plan *types.Plan) map[types.IndicatorType]types.Params {
	specs := make(map[types.IndicatorType]types.Params)

	if spec, ok := b.detectorRegistry.Get(detectorName(plan)); ok {
		for name, params := range spec.Indicators {
			specs[name] = params
		}
	}

	for name, params := range plan.Indicators {
		specs[name] = params.Merged(specs[name])
	}

	switch plan.Risk.Trailing.Method {
	case types.TrailingMethodATR:
		if _, ok := specs[types.IndicatorTypeATR]; !ok {
			specs[types.IndicatorTypeATR] = types.Params{"period": plan.Risk.Trailing.Period}
		}
	case types.TrailingMethodEMA:
		if _, ok := specs[types.IndicatorTypeEMA]; !ok {
			specs[types.IndicatorTypeEMA] = types.Params{"period": plan.Risk.Trailing.Period}
		}
	}

	return specs
}

// entrySignals produces one entry signal per bar. The strategy's detector is
// tried first; on detector failure (including panic) the plan's legacy rule
// takes over, and with no usable rule the day simply produces no signals.
func (b *BacktestEngineV1) entrySignals(plan *types.Plan, bars []types.MarketData, seriesCtx map[string]indicator.Series) []bool {
	if spec, ok := b.detectorRegistry.Get(detectorName(plan)); ok {
		signals, err := b.safeDetect(spec, plan, bars)
		if err == nil {
			return signals
		}

		b.log.Warn("Detector failed, falling back to rule",
			zap.String("strategy", string(plan.StrategyType)),
			zap.Error(err),
		)
	}

	if plan.Entry.Rule == "" {
		return make([]bool, len(bars))
	}

	compiled, err := rule.Compile(plan.Entry.Rule)
	if err != nil {
		b.log.Warn("Entry rule rejected",
			zap.String("rule", plan.Entry.Rule),
			zap.Error(err),
		)

		return make([]bool, len(bars))
	}

	signals := make([]bool, len(bars))
	for i := range bars {
		signals[i] = compiled.Eval(b.ruleContext(plan, bars, seriesCtx, i))
	}

	return signals
}

// safeDetect runs the detector with panic recovery. A panicking detector is a
// detector failure, never a crashed backtest.
func (b *BacktestEngineV1) safeDetect(spec detector.Spec, plan *types.Plan, bars []types.MarketData) (signals []bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			signals = nil
			err = errors.Newf(errors.ErrCodeDetectorFailed, "detector panicked: %v", r)
		}
	}()

	params := plan.Entry.Params.Merged(spec.DefaultParams)

	if _, ok := params["previous_day_high"]; !ok {
		if high, found := previousDayHigh(bars, plan.Date); found {
			params["previous_day_high"] = high
		}
	}

	return spec.Detector.Detect(bars, params)
}

// previousDayHigh scans the warm-up prefix for the session immediately before
// the trade date and returns its highest high.
func previousDayHigh(bars []types.MarketData, tradeDate string) (float64, bool) {
	if tradeDate == "" && len(bars) > 0 {
		tradeDate = bars[len(bars)-1].TradeDate()
	}

	prevDate := ""
	high := 0.0

	for _, bar := range bars {
		date := bar.TradeDate()
		if date >= tradeDate {
			break
		}

		if date != prevDate {
			prevDate = date
			high = bar.High
			continue
		}

		high = math.Max(high, bar.High)
	}

	return high, prevDate != ""
}

// ruleContext assembles the evaluation context for the legacy rule at one bar.
// Only defined indicator values are bound; a rule referencing a warm-up gap
// simply evaluates false.
func (b *BacktestEngineV1) ruleContext(plan *types.Plan, bars []types.MarketData, seriesCtx map[string]indicator.Series, i int) map[string]float64 {
	bar := bars[i]
	ctx := map[string]float64{
		"price":  bar.Close,
		"open":   bar.Open,
		"high":   bar.High,
		"low":    bar.Low,
		"close":  bar.Close,
		"volume": bar.Volume,
		"entry":  plan.Risk.EntryPrice,
	}

	for name, series := range seriesCtx {
		if v, ok := series.Value(i); ok {
			ctx[name] = v
		}
	}

	if hist, ok := seriesCtx[indicator.SeriesMACDHist]; ok && i > 0 {
		if prev, okPrev := hist.Value(i - 1); okPrev {
			ctx["macd_hist_prev"] = prev
			if cur, okCur := hist.Value(i); okCur {
				ctx["macd_hist_rising"] = 0
				if cur > prev {
					ctx["macd_hist_rising"] = 1
				}
			}
		}
	}

	return ctx
}

// simulate replays the trade-date bars through the position state machine and
// fills in equity, return and drawdown on the result.
func (b *BacktestEngineV1) simulate(symbol string, plan *types.Plan, bars []types.MarketData, tradeDate string, seriesCtx map[string]indicator.Series, signals []bool, result *types.BacktestResult) error {
	cash := b.config.InitialCapital
	equity := cash
	peak := cash
	maxDrawdown := 0.0

	var ts *tradeState

	for i, bar := range bars {
		if bar.TradeDate() != tradeDate {
			continue
		}

		lastOfDay := i+1 >= len(bars) || bars[i+1].TradeDate() != tradeDate

		if ts == nil {
			if signals[i] && !lastOfDay {
				opened, err := b.openPosition(symbol, plan, bar, i, cash)
				if err != nil {
					return err
				}

				if opened != nil {
					ts = opened
					cash = b.applyFill(cash, ts.entrySide(), ts.openSize, bar.Close)
					cash -= b.commission.Calculate(ts.openSize)
				}
			}
		} else {
			b.updateTrailing(ts, plan, seriesCtx, i)

			for _, fill := range ts.takeProfitFills(bar, plan.Risk.TakeProfits) {
				if err := b.recordExit(symbol, plan, ts, fill.quantity, fill.price, bar.Time, types.OrderReasonTakeProfit, "take-profit bucket reached"); err != nil {
					return err
				}

				cash = b.applyFill(cash, ts.exitSide(), fill.quantity, fill.price)
				cash -= b.commission.Calculate(fill.quantity)
			}

			if ts.openSize > 0 && ts.stopBreached(bar) {
				reason := types.OrderReasonTrailingStop
				message := "trailing stop breached"
				if ts.stopLevel == plan.Risk.StopPrice {
					reason = types.OrderReasonFixedStop
					message = "fixed stop breached"
				}

				qty := ts.closeAll()
				if err := b.recordExit(symbol, plan, ts, qty, ts.stopLevel, bar.Time, reason, message); err != nil {
					return err
				}

				cash = b.applyFill(cash, ts.exitSide(), qty, ts.stopLevel)
				cash -= b.commission.Calculate(qty)
			}

			ts.observeClose(bar.Close)
		}

		if ts != nil && ts.openSize > 0 && lastOfDay {
			qty := ts.closeAll()
			if err := b.recordExit(symbol, plan, ts, qty, bar.Close, bar.Time, types.OrderReasonEODFlatten, "end of trade date"); err != nil {
				return err
			}

			cash = b.applyFill(cash, ts.exitSide(), qty, bar.Close)
			cash -= b.commission.Calculate(qty)
		}

		if ts != nil && ts.openSize == 0 {
			ts = nil
		}

		equity = cash
		if ts != nil {
			equity = cash + ts.signedQuantity()*bar.Close
		}

		if equity > peak {
			peak = equity
		}

		if peak > 0 {
			drawdown := (peak - equity) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	result.FinalValue = equity
	result.NetReturn = (equity - b.config.InitialCapital) / b.config.InitialCapital
	result.MaxDrawdown = maxDrawdown

	return nil
}

// openPosition sizes and records an entry fill at the bar close. A size that
// rounds to zero keeps the day flat without error.
func (b *BacktestEngineV1) openPosition(symbol string, plan *types.Plan, bar types.MarketData, barIndex int, cash float64) (*tradeState, error) {
	stopDistance := math.Max(sizingEpsilon, math.Abs(bar.Close-plan.Risk.StopPrice))
	riskAmount := cash * plan.Sizing.RiskPct / 100

	qty := utils.RoundToDecimalPrecision(riskAmount/stopDistance, b.config.DecimalPrecision)

	affordable := utils.RoundToDecimalPrecision(cash/bar.Close, b.config.DecimalPrecision)
	if qty > affordable {
		qty = affordable
	}

	if qty > 0 {
		fee := b.commission.Calculate(qty)
		if qty*bar.Close+fee > cash {
			qty = utils.RoundToDecimalPrecision((cash-fee)/bar.Close, b.config.DecimalPrecision)
		}
	}

	if qty <= 0 {
		b.log.Debug("Entry signal skipped: size rounds to zero",
			zap.String("symbol", symbol),
			zap.Float64("risk_amount", riskAmount),
			zap.Float64("stop_distance", stopDistance),
		)

		return nil, nil
	}

	ts := newTradeState(plan, bar.Close, qty, barIndex, b.config.DecimalPrecision)

	order := types.Order{
		Symbol:       symbol,
		Side:         ts.entrySide(),
		Quantity:     qty,
		Price:        bar.Close,
		Timestamp:    bar.Time,
		Reason:       types.Reason{Reason: types.OrderReasonEntrySignal, Message: "entry condition fired"},
		StrategyName: string(plan.StrategyType),
		Fee:          b.commission.Calculate(qty),
		PositionType: plan.Direction,
	}

	if _, err := b.state.Update([]types.Order{order}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOrderFailed, "failed to record entry", err)
	}

	return ts, nil
}

// updateTrailing recomputes the trailing stop for the current bar. The stop
// only tightens; an undefined indicator value leaves it unchanged.
func (b *BacktestEngineV1) updateTrailing(ts *tradeState, plan *types.Plan, seriesCtx map[string]indicator.Series, i int) {
	switch plan.Risk.Trailing.Method {
	case types.TrailingMethodATR:
		series, ok := seriesCtx[indicator.SeriesATR]
		if !ok {
			return
		}

		atr, valid := series.Value(i)
		if !valid {
			return
		}

		if ts.direction == types.DirectionShort {
			ts.tighten(ts.highWaterMark + plan.Risk.Trailing.Multiplier*atr)
		} else {
			ts.tighten(ts.highWaterMark - plan.Risk.Trailing.Multiplier*atr)
		}
	case types.TrailingMethodEMA:
		series, ok := seriesCtx[indicator.SeriesEMA]
		if !ok {
			return
		}

		ema, valid := series.Value(i)
		if !valid {
			return
		}

		ts.tighten(ema)
	}
}

// recordExit writes one exit fill into the ledger.
func (b *BacktestEngineV1) recordExit(symbol string, plan *types.Plan, ts *tradeState, qty, price float64, at time.Time, reason, message string) error {
	order := types.Order{
		Symbol:       symbol,
		Side:         ts.exitSide(),
		Quantity:     qty,
		Price:        price,
		Timestamp:    at,
		Reason:       types.Reason{Reason: reason, Message: message},
		StrategyName: string(plan.StrategyType),
		Fee:          b.commission.Calculate(qty),
		PositionType: plan.Direction,
	}

	if _, err := b.state.Update([]types.Order{order}); err != nil {
		return errors.Wrap(errors.ErrCodeOrderFailed, fmt.Sprintf("failed to record %s exit", reason), err)
	}

	return nil
}

// applyFill moves cash for one fill. Buys consume cash, sells add proceeds.
func (b *BacktestEngineV1) applyFill(cash float64, side types.PurchaseType, qty, price float64) float64 {
	if side == types.PurchaseTypeBuy {
		return cash - qty*price
	}

	return cash + qty*price
}
