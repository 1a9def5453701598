package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type OrderUtilsTestSuite struct {
	suite.Suite
}

func TestOrderUtilsSuite(t *testing.T) {
	suite.Run(t, new(OrderUtilsTestSuite))
}

func (suite *OrderUtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{"whole units floor", 10.99, 0, 10},
		{"two decimals", 10.999, 2, 10.99},
		{"already round", 5, 0, 5},
		{"negative precision treated as zero", 3.7, -1, 3},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, RoundToDecimalPrecision(tc.quantity, tc.precision))
		})
	}
}
