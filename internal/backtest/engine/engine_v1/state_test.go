package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/plantrade/internal/logger"
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/stretchr/testify/suite"
)

type StateTestSuite struct {
	suite.Suite
	state *BacktestState
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}

func (suite *StateTestSuite) SetupTest() {
	log, err := logger.NewDevelopmentLogger()
	suite.Require().NoError(err)

	suite.state = NewBacktestState(log)
	suite.Require().NotNil(suite.state)
	suite.Require().NoError(suite.state.Initialize())
}

func (suite *StateTestSuite) TearDownTest() {
	suite.Require().NoError(suite.state.Close())
}

func (suite *StateTestSuite) newOrder(side types.PurchaseType, qty, price float64, reason string) types.Order {
	return types.Order{
		Symbol:       "AAPL",
		Side:         side,
		Quantity:     qty,
		Price:        price,
		Timestamp:    time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Reason:       types.Reason{Reason: reason, Message: "test"},
		StrategyName: string(types.StrategyTypeBreakout),
		PositionType: types.DirectionLong,
	}
}

func (suite *StateTestSuite) TestEmptyLedgerHasZeroPosition() {
	position, err := suite.state.GetPosition("AAPL")
	suite.Require().NoError(err)
	suite.Equal(0.0, position.OpenQuantity)
	suite.Equal(0.0, position.TotalInQuantity)
}

func (suite *StateTestSuite) TestEntryCreatesPosition() {
	results, err := suite.state.Update([]types.Order{
		suite.newOrder(types.PurchaseTypeBuy, 10, 100, types.OrderReasonEntrySignal),
	})
	suite.Require().NoError(err)
	suite.Require().Len(results, 1)
	suite.True(results[0].IsNewPosition)
	suite.NotEmpty(results[0].Order.OrderID)
	suite.Equal(0.0, results[0].Trade.PnL)

	position, err := suite.state.GetPosition("AAPL")
	suite.Require().NoError(err)
	suite.Equal(10.0, position.OpenQuantity)
	suite.Equal(100.0, position.GetAverageEntryPrice())
}

func (suite *StateTestSuite) TestExitRealizesPnL() {
	_, err := suite.state.Update([]types.Order{
		suite.newOrder(types.PurchaseTypeBuy, 10, 100, types.OrderReasonEntrySignal),
	})
	suite.Require().NoError(err)

	results, err := suite.state.Update([]types.Order{
		suite.newOrder(types.PurchaseTypeSell, 10, 105, types.OrderReasonTakeProfit),
	})
	suite.Require().NoError(err)
	suite.Require().Len(results, 1)
	suite.False(results[0].IsNewPosition)
	suite.InDelta(50.0, results[0].Trade.PnL, 1e-9)

	position, err := suite.state.GetPosition("AAPL")
	suite.Require().NoError(err)
	suite.Equal(0.0, position.OpenQuantity)
}

func (suite *StateTestSuite) TestShortExitPnL() {
	entry := suite.newOrder(types.PurchaseTypeSell, 10, 100, types.OrderReasonEntrySignal)
	entry.PositionType = types.DirectionShort
	_, err := suite.state.Update([]types.Order{entry})
	suite.Require().NoError(err)

	exit := suite.newOrder(types.PurchaseTypeBuy, 10, 95, types.OrderReasonTakeProfit)
	exit.PositionType = types.DirectionShort
	results, err := suite.state.Update([]types.Order{exit})
	suite.Require().NoError(err)

	// short covers below entry at a profit
	suite.InDelta(50.0, results[0].Trade.PnL, 1e-9)
}

func (suite *StateTestSuite) TestStatsSummarizeClosedTrades() {
	orders := []types.Order{
		suite.newOrder(types.PurchaseTypeBuy, 10, 100, types.OrderReasonEntrySignal),
		suite.newOrder(types.PurchaseTypeSell, 5, 105, types.OrderReasonTakeProfit),
		suite.newOrder(types.PurchaseTypeSell, 5, 98, types.OrderReasonFixedStop),
	}

	_, err := suite.state.Update(orders)
	suite.Require().NoError(err)

	stats, err := suite.state.GetStats("AAPL")
	suite.Require().NoError(err)

	suite.Equal(2, stats.NumberOfTrades)
	suite.Equal(1, stats.NumberOfWinningTrades)
	suite.Equal(1, stats.NumberOfLosingTrades)
	suite.InDelta(0.5, stats.WinRate, 1e-9)
	suite.InDelta(15.0, stats.RealizedPnL, 1e-9)
	suite.InDelta(10.0, stats.MaximumLoss, 1e-9)
	suite.InDelta(25.0, stats.MaximumProfit, 1e-9)
}

func (suite *StateTestSuite) TestReentryPnLUsesOwnCycleEntry() {
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	order := func(side types.PurchaseType, qty, price float64, reason string, minute int) types.Order {
		o := suite.newOrder(side, qty, price, reason)
		o.Timestamp = at.Add(time.Duration(minute) * time.Minute)
		return o
	}

	_, err := suite.state.Update([]types.Order{
		order(types.PurchaseTypeBuy, 10, 100, types.OrderReasonEntrySignal, 0),
		order(types.PurchaseTypeSell, 10, 100, types.OrderReasonFixedStop, 1),
		order(types.PurchaseTypeBuy, 10, 110, types.OrderReasonEntrySignal, 2),
	})
	suite.Require().NoError(err)

	// the closed first round trip must not blend into the open cycle
	position, err := suite.state.GetPosition("AAPL")
	suite.Require().NoError(err)
	suite.Equal(10.0, position.OpenQuantity)
	suite.InDelta(110.0, position.GetAverageEntryPrice(), 1e-9)

	results, err := suite.state.Update([]types.Order{
		order(types.PurchaseTypeSell, 10, 105, types.OrderReasonEODFlatten, 3),
	})
	suite.Require().NoError(err)
	suite.InDelta(-50.0, results[0].Trade.PnL, 1e-9)

	stats, err := suite.state.GetStats("AAPL")
	suite.Require().NoError(err)
	suite.Equal(2, stats.NumberOfTrades)
	suite.Equal(1, stats.NumberOfLosingTrades)
	suite.InDelta(50.0, stats.MaximumLoss, 1e-9)
	suite.InDelta(-50.0, stats.RealizedPnL, 1e-9)
}

func (suite *StateTestSuite) TestGetOrderById() {
	results, err := suite.state.Update([]types.Order{
		suite.newOrder(types.PurchaseTypeBuy, 10, 100, types.OrderReasonEntrySignal),
	})
	suite.Require().NoError(err)

	found, err := suite.state.GetOrderById(results[0].Order.OrderID)
	suite.Require().NoError(err)
	suite.True(found.IsSome())
	suite.Equal("AAPL", found.Unwrap().Symbol)

	missing, err := suite.state.GetOrderById("not-an-id")
	suite.Require().NoError(err)
	suite.True(missing.IsNone())
}

func (suite *StateTestSuite) TestCleanupResetsLedger() {
	_, err := suite.state.Update([]types.Order{
		suite.newOrder(types.PurchaseTypeBuy, 10, 100, types.OrderReasonEntrySignal),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.state.Cleanup())

	trades, err := suite.state.GetAllTrades()
	suite.Require().NoError(err)
	suite.Empty(trades)
}
