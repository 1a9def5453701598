package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 0},
		{"small quantity", 10, 0},
		{"large quantity", 10000, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.quantity)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"minimum fee", 10, 1.0},       // 0.005 * 10 = 0.05 < 1.0
		{"at threshold", 200, 1.0},     // 0.005 * 200 = 1.0
		{"above threshold", 1000, 5.0}, // 0.005 * 1000 = 5.0
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.quantity)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	suite.IsType(&InteractiveBrokerCommissionFee{}, GetCommissionFeeHandler(BrokerInteractiveBroker))
	suite.IsType(&ZeroCommissionFee{}, GetCommissionFeeHandler(BrokerZero))
	suite.IsType(&ZeroCommissionFee{}, GetCommissionFeeHandler(Broker("unknown")))
}
