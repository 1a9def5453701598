package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/plantrade/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PlanTestSuite struct {
	suite.Suite
}

func TestPlanSuite(t *testing.T) {
	suite.Run(t, new(PlanTestSuite))
}

func validPlan() Plan {
	return Plan{
		Symbol:       "AAPL",
		Date:         "2024-03-05",
		StrategyType: StrategyTypeBreakout,
		Direction:    DirectionLong,
		Risk: RiskConfig{
			EntryPrice: 100,
			StopPrice:  98,
			TakeProfits: []TakeProfitLevel{
				{Price: 104, SizePct: 50},
				{Price: 108, SizePct: 50},
			},
			Trailing: TrailingConfig{
				Method:     TrailingMethodATR,
				Period:     14,
				Multiplier: 2,
			},
		},
		Sizing: SizingConfig{RiskPct: 1},
	}
}

func (suite *PlanTestSuite) TestValidPlan() {
	plan := validPlan()
	suite.NoError(plan.Validate())
}

func (suite *PlanTestSuite) TestNormalizeDefaults() {
	plan := validPlan()
	plan.Direction = ""
	plan.Risk.Trailing = TrailingConfig{}

	plan.Normalize()
	suite.Equal(DirectionLong, plan.Direction)
	suite.Equal(TrailingMethodNone, plan.Risk.Trailing.Method)
}

func (suite *PlanTestSuite) TestLongStopMustBeBelowEntry() {
	plan := validPlan()
	plan.Risk.StopPrice = 101

	err := plan.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStopLoss))

	// stop exactly at entry is rejected too
	plan.Risk.StopPrice = plan.Risk.EntryPrice
	suite.Error(plan.Validate())
}

func (suite *PlanTestSuite) TestShortStopMustBeAboveEntry() {
	plan := validPlan()
	plan.Direction = DirectionShort

	err := plan.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStopLoss))

	plan.Risk.StopPrice = 102
	suite.NoError(plan.Validate())
}

func (suite *PlanTestSuite) TestTakeProfitSizeBounds() {
	plan := validPlan()
	plan.Risk.TakeProfits = []TakeProfitLevel{{Price: 104, SizePct: 150}}

	err := plan.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPlan))
}

func (suite *PlanTestSuite) TestTrailingRequiresPeriod() {
	plan := validPlan()
	plan.Risk.Trailing.Period = 0

	err := plan.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTrailing))
}

func (suite *PlanTestSuite) TestATRTrailingRequiresMultiplier() {
	plan := validPlan()
	plan.Risk.Trailing.Multiplier = 0

	err := plan.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMultiplier))
}

func (suite *PlanTestSuite) TestRiskPctRequired() {
	plan := validPlan()
	plan.Sizing.RiskPct = 0

	err := plan.Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPlan))
}

type MarketDataTestSuite struct {
	suite.Suite
}

func TestMarketDataSuite(t *testing.T) {
	suite.Run(t, new(MarketDataTestSuite))
}

func (suite *MarketDataTestSuite) TestValidateBars() {
	start := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	bars := []MarketData{
		{Time: start},
		{Time: start.Add(time.Hour)},
		{Time: start.Add(2 * time.Hour)},
	}

	suite.NoError(ValidateBars(bars))
	suite.NoError(ValidateBars(nil))

	bars[2].Time = bars[1].Time // duplicate timestamp
	err := ValidateBars(bars)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnorderedData))
}

func (suite *MarketDataTestSuite) TestTradeDate() {
	bar := MarketData{Time: time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)}
	suite.Equal("2024-03-05", bar.TradeDate())
}

func (suite *MarketDataTestSuite) TestParamsCoercion() {
	p := Params{"period": 14, "float_period": 14.0, "factor": 2.5, "name": "x"}

	suite.Equal(14, p.Int("period", 0))
	suite.Equal(14, p.Int("float_period", 0))
	suite.Equal(7, p.Int("missing", 7))
	suite.Equal(0, p.Int("name", 0))

	suite.InDelta(2.5, p.Float("factor", 0), 1e-9)
	suite.InDelta(14.0, p.Float("period", 0), 1e-9)
	suite.InDelta(1.5, p.Float("missing", 1.5), 1e-9)
}

func (suite *MarketDataTestSuite) TestParamsMerged() {
	defaults := Params{"a": 1, "b": 2}
	overrides := Params{"b": 3, "c": 4}

	merged := overrides.Merged(defaults)
	suite.Equal(1, merged["a"])
	suite.Equal(3, merged["b"])
	suite.Equal(4, merged["c"])

	// inputs untouched
	suite.Equal(2, defaults["b"])
}

func (suite *MarketDataTestSuite) TestWriteBacktestResult() {
	result := BacktestResult{Symbol: "AAPL", Date: "2024-03-05", Status: BacktestStatusOK}

	path := filepath.Join(suite.T().TempDir(), "AAPL_2024-03-05.yaml")
	suite.Require().NoError(WriteBacktestResult(path, result))

	_, err := os.Stat(path)
	suite.Require().NoError(err)

	err = WriteBacktestResult(filepath.Join(suite.T().TempDir(), "missing", "out.yaml"), result)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStorageWriteFailed))
}

func (suite *MarketDataTestSuite) TestPositionPnL() {
	position := Position{
		Symbol:           "AAPL",
		Direction:        DirectionLong,
		TotalInQuantity:  10,
		TotalInAmount:    1000,
		TotalOutQuantity: 10,
		TotalOutAmount:   1050,
	}

	suite.InDelta(100.0, position.GetAverageEntryPrice(), 1e-9)
	suite.InDelta(50.0, position.GetRealizedPnL(), 1e-9)

	position.Direction = DirectionShort
	suite.InDelta(-50.0, position.GetRealizedPnL(), 1e-9)
}
