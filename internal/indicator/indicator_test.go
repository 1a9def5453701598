package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/plantrade/internal/logger"
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func barsFromCloses(closes ...float64) []types.MarketData {
	start := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	bars := make([]types.MarketData, len(closes))

	for i, c := range closes {
		bars[i] = types.MarketData{
			Symbol: "TEST",
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *IndicatorTestSuite) TestSMAWarmUpGap() {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	out, err := NewSMA().Compute(bars, types.Params{"period": 3})
	suite.Require().NoError(err)

	sma := out[SeriesSMA]
	suite.False(sma.Valid(0))
	suite.False(sma.Valid(1))

	v, ok := sma.Value(2)
	suite.True(ok)
	suite.InDelta(2.0, v, 1e-9)

	v, _ = sma.Value(4)
	suite.InDelta(4.0, v, 1e-9)
}

func (suite *IndicatorTestSuite) TestEMASeededWithSimpleMean() {
	bars := barsFromCloses(1, 2, 3)

	out, err := NewEMA().Compute(bars, types.Params{"period": 2})
	suite.Require().NoError(err)

	ema := out[SeriesEMA]
	suite.False(ema.Valid(0))

	v, ok := ema.Value(1)
	suite.True(ok)
	suite.InDelta(1.5, v, 1e-9)

	// alpha = 2/3: (2/3)*3 + (1/3)*1.5
	v, _ = ema.Value(2)
	suite.InDelta(2.5, v, 1e-9)
}

func (suite *IndicatorTestSuite) TestATRConstantRange() {
	closes := []float64{10, 10, 10, 10, 10, 10}
	bars := barsFromCloses(closes...)
	for i := range bars {
		bars[i].High = 11
		bars[i].Low = 9
	}

	out, err := NewATR().Compute(bars, types.Params{"period": 3})
	suite.Require().NoError(err)

	atr := out[SeriesATR]
	for i := 0; i < 3; i++ {
		suite.False(atr.Valid(i), "index %d should be warm-up", i)
	}

	v, ok := atr.Value(3)
	suite.True(ok)
	suite.InDelta(2.0, v, 1e-9)

	v, _ = atr.Value(5)
	suite.InDelta(2.0, v, 1e-9)
}

func (suite *IndicatorTestSuite) TestRSIPinnedOnOneSidedMoves() {
	rising := barsFromCloses(1, 2, 3, 4, 5, 6)

	out, err := NewRSI().Compute(rising, types.Params{"period": 3})
	suite.Require().NoError(err)

	rsi := out[SeriesRSI]
	suite.False(rsi.Valid(2))

	v, ok := rsi.Value(3)
	suite.True(ok)
	suite.InDelta(100.0, v, 1e-9)

	flat := barsFromCloses(5, 5, 5, 5, 5)
	out, err = NewRSI().Compute(flat, types.Params{"period": 3})
	suite.Require().NoError(err)

	v, _ = out[SeriesRSI].Value(4)
	suite.InDelta(50.0, v, 1e-9)
}

func (suite *IndicatorTestSuite) TestVWAPRollingWindow() {
	bars := barsFromCloses(1, 2, 3)

	out, err := NewVWAP().Compute(bars, types.Params{"period": 2})
	suite.Require().NoError(err)

	vwap := out[SeriesVWAP]
	suite.False(vwap.Valid(0))

	v, ok := vwap.Value(1)
	suite.True(ok)
	suite.InDelta(1.5, v, 1e-6)

	v, _ = vwap.Value(2)
	suite.InDelta(2.5, v, 1e-6)
}

func (suite *IndicatorTestSuite) TestBollingerBands() {
	bars := barsFromCloses(1, 3)

	out, err := NewBollingerBands().Compute(bars, types.Params{"period": 2, "dev_factor": 2.0})
	suite.Require().NoError(err)

	mid, ok := out[SeriesBBMid].Value(1)
	suite.True(ok)
	suite.InDelta(2.0, mid, 1e-9)

	top, _ := out[SeriesBBTop].Value(1)
	suite.InDelta(4.0, top, 1e-9)

	bot, _ := out[SeriesBBBot].Value(1)
	suite.InDelta(0.0, bot, 1e-9)
}

func (suite *IndicatorTestSuite) TestMACDOutputsAligned() {
	bars := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8)

	out, err := NewMACD().Compute(bars, types.Params{"fast": 2, "slow": 3, "signal": 2})
	suite.Require().NoError(err)

	line := out[SeriesMACD]
	signal := out[SeriesMACDSignal]
	hist := out[SeriesMACDHist]

	suite.False(line.Valid(1))
	suite.True(line.Valid(2))
	suite.False(signal.Valid(2))
	suite.True(signal.Valid(3))

	l, _ := line.Value(4)
	s, _ := signal.Value(4)
	h, ok := hist.Value(4)
	suite.True(ok)
	suite.InDelta(l-s, h, 1e-9)
}

func (suite *IndicatorTestSuite) TestMACDRejectsFastAboveSlow() {
	_, err := NewMACD().Compute(barsFromCloses(1, 2, 3), types.Params{"fast": 26, "slow": 12})
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidPeriod, errors.GetCode(err))
}

func (suite *IndicatorTestSuite) TestRegistryUnknownIndicator() {
	registry := NewDefaultRegistry()

	_, err := registry.GetIndicator(types.IndicatorType("supertrend"))
	suite.Require().Error(err)
}

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	log, err := logger.NewDevelopmentLogger()
	suite.Require().NoError(err)
	suite.engine = NewEngine(NewDefaultRegistry(), log)
}

func (suite *EngineTestSuite) TestComputeSpecsOnlyReferenced() {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	ctx, err := suite.engine.ComputeSpecs(bars, map[types.IndicatorType]types.Params{
		types.IndicatorTypeSMA: {"period": 3},
	})
	suite.Require().NoError(err)

	suite.Contains(ctx, SeriesSMA)
	suite.NotContains(ctx, SeriesRSI)
	suite.NotContains(ctx, SeriesATR)
}

func (suite *EngineTestSuite) TestComputeSpecsUnknownIndicator() {
	bars := barsFromCloses(1, 2, 3)

	_, err := suite.engine.ComputeSpecs(bars, map[types.IndicatorType]types.Params{
		types.IndicatorType("supertrend"): {},
	})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *EngineTestSuite) TestWarmUpBarsTakesMax() {
	warmUp, err := suite.engine.WarmUpBars(map[types.IndicatorType]types.Params{
		types.IndicatorTypeSMA: {"period": 5},
		types.IndicatorTypeRSI: {"period": 14},
	})
	suite.Require().NoError(err)
	suite.Equal(15, warmUp)
}
