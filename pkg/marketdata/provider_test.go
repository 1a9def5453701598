package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (suite *ProviderTestSuite) TestStaticProviderFiltersWindow() {
	start := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	bars := []types.MarketData{
		{Symbol: "AAPL", Time: start, Close: 100},
		{Symbol: "AAPL", Time: start.Add(time.Hour), Close: 101},
		{Symbol: "MSFT", Time: start.Add(time.Hour), Close: 400},
		{Symbol: "AAPL", Time: start.Add(48 * time.Hour), Close: 103},
	}

	provider := NewStaticProvider(bars)

	out, err := provider.FetchBars(context.Background(), "AAPL", start, start.Add(24*time.Hour), IntervalHour)
	suite.Require().NoError(err)
	suite.Require().Len(out, 2)
	suite.Equal(100.0, out[0].Close)
	suite.Equal(101.0, out[1].Close)
}

func (suite *ProviderTestSuite) TestStaticProviderEmptyWindowIsNotAnError() {
	provider := NewStaticProvider(nil)

	out, err := provider.FetchBars(context.Background(), "AAPL", time.Now(), time.Now().Add(time.Hour), IntervalHour)
	suite.Require().NoError(err)
	suite.Empty(out)
}

func (suite *ProviderTestSuite) TestNewProviderStatic() {
	provider, err := NewProvider(ProviderStatic, []types.MarketData{})
	suite.Require().NoError(err)
	suite.NotNil(provider)
}

func (suite *ProviderTestSuite) TestNewProviderUnknown() {
	_, err := NewProvider(ProviderType("yahoo"), nil)
	suite.Require().Error(err)
}

func (suite *ProviderTestSuite) TestNewProviderPolygonRequiresKeyString() {
	_, err := NewProvider(ProviderPolygon, 42)
	suite.Require().Error(err)
}
