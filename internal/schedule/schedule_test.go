package schedule

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/suite"
)

type ScheduleTestSuite struct {
	suite.Suite
}

func TestScheduleSuite(t *testing.T) {
	suite.Run(t, new(ScheduleTestSuite))
}

func (suite *ScheduleTestSuite) TestDailyRegistersOneEntryPerSymbol() {
	c := cron.New()

	err := Daily(c, []string{"AAPL", "MSFT", "NVDA"}, "08:00", time.UTC, func(symbol string) {})
	suite.Require().NoError(err)
	suite.Len(c.Entries(), 3)
}

func (suite *ScheduleTestSuite) TestDailyRejectsBadClock() {
	c := cron.New()

	for _, at := range []string{"8am", "25:00", "08-00", ""} {
		err := Daily(c, []string{"AAPL"}, at, time.UTC, func(symbol string) {})
		suite.Require().Error(err, "clock %q should be rejected", at)
	}
}
