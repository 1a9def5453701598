package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/stretchr/testify/suite"
)

type TradeStateTestSuite struct {
	suite.Suite
}

func TestTradeStateSuite(t *testing.T) {
	suite.Run(t, new(TradeStateTestSuite))
}

func longPlan() *types.Plan {
	return &types.Plan{
		Symbol:       "TEST",
		StrategyType: types.StrategyTypeBreakout,
		Direction:    types.DirectionLong,
		Risk: types.RiskConfig{
			EntryPrice: 100,
			StopPrice:  98,
			TakeProfits: []types.TakeProfitLevel{
				{Price: 102, SizePct: 50},
				{Price: 104, SizePct: 50},
			},
		},
		Sizing: types.SizingConfig{RiskPct: 1},
	}
}

func bar(high, low, close float64) types.MarketData {
	return types.MarketData{
		Symbol: "TEST",
		Time:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Open:   close,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

func (suite *TradeStateTestSuite) TestStopOnlyTightens() {
	ts := newTradeState(longPlan(), 100, 10, 0, 0)
	suite.Equal(98.0, ts.stopLevel)

	ts.tighten(99)
	suite.Equal(99.0, ts.stopLevel)

	// a looser proposal never moves the stop back
	ts.tighten(97)
	suite.Equal(99.0, ts.stopLevel)

	ts.tighten(99.5)
	suite.Equal(99.5, ts.stopLevel)
}

func (suite *TradeStateTestSuite) TestStopOnlyTightensShort() {
	plan := longPlan()
	plan.Direction = types.DirectionShort
	plan.Risk.StopPrice = 102

	ts := newTradeState(plan, 100, 10, 0, 0)
	suite.Equal(102.0, ts.stopLevel)

	ts.tighten(101)
	suite.Equal(101.0, ts.stopLevel)

	ts.tighten(103)
	suite.Equal(101.0, ts.stopLevel)
}

func (suite *TradeStateTestSuite) TestHighWaterMarkTracksClose() {
	ts := newTradeState(longPlan(), 100, 10, 0, 0)

	ts.observeClose(101)
	suite.Equal(101.0, ts.highWaterMark)

	ts.observeClose(100.5)
	suite.Equal(101.0, ts.highWaterMark)

	ts.observeClose(103)
	suite.Equal(103.0, ts.highWaterMark)
}

func (suite *TradeStateTestSuite) TestTakeProfitBucketsFireOnce() {
	plan := longPlan()
	ts := newTradeState(plan, 100, 10, 0, 0)

	fills := ts.takeProfitFills(bar(102.5, 101, 102), plan.Risk.TakeProfits)
	suite.Require().Len(fills, 1)
	suite.Equal(102.0, fills[0].price)
	suite.Equal(5.0, fills[0].quantity)
	suite.Equal(5.0, ts.openSize)

	// same bar again: the bucket never refires
	fills = ts.takeProfitFills(bar(102.5, 101, 102), plan.Risk.TakeProfits)
	suite.Empty(fills)
	suite.Equal(5.0, ts.openSize)
}

func (suite *TradeStateTestSuite) TestTakeProfitTotalNeverExceedsOriginalSize() {
	plan := longPlan()
	plan.Risk.TakeProfits = []types.TakeProfitLevel{
		{Price: 101, SizePct: 80},
		{Price: 102, SizePct: 80},
	}

	ts := newTradeState(plan, 100, 10, 0, 0)

	// one bar spikes through both targets
	fills := ts.takeProfitFills(bar(103, 100, 102.5), plan.Risk.TakeProfits)
	suite.Require().Len(fills, 2)

	total := fills[0].quantity + fills[1].quantity
	suite.Equal(10.0, total)
	suite.Equal(0.0, ts.openSize)
}

func (suite *TradeStateTestSuite) TestStopBreach() {
	ts := newTradeState(longPlan(), 100, 10, 0, 0)

	suite.False(ts.stopBreached(bar(101, 99, 100)))
	suite.True(ts.stopBreached(bar(101, 97.5, 98.5)))

	short := longPlan()
	short.Direction = types.DirectionShort
	short.Risk.StopPrice = 102
	tsShort := newTradeState(short, 100, 10, 0, 0)

	suite.False(tsShort.stopBreached(bar(101, 99, 100)))
	suite.True(tsShort.stopBreached(bar(102.5, 100, 101)))
}

func (suite *TradeStateTestSuite) TestSidesAndSignedQuantity() {
	ts := newTradeState(longPlan(), 100, 10, 0, 0)
	suite.Equal(types.PurchaseTypeBuy, ts.entrySide())
	suite.Equal(types.PurchaseTypeSell, ts.exitSide())
	suite.Equal(10.0, ts.signedQuantity())

	short := longPlan()
	short.Direction = types.DirectionShort
	short.Risk.StopPrice = 102
	tsShort := newTradeState(short, 100, 10, 0, 0)
	suite.Equal(types.PurchaseTypeSell, tsShort.entrySide())
	suite.Equal(types.PurchaseTypeBuy, tsShort.exitSide())
	suite.Equal(-10.0, tsShort.signedQuantity())

	suite.Equal(10.0, tsShort.closeAll())
	suite.Equal(0.0, tsShort.openSize)
}
