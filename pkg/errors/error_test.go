package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNew() {
	err := New(ErrCodeInvalidPlan, "bad plan")
	suite.Equal(ErrCodeInvalidPlan, err.Code)
	suite.Equal("bad plan", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[101] bad plan", err.Error())
}

func (suite *ErrorTestSuite) TestNewf() {
	err := Newf(ErrCodeIndicatorNotFound, "unknown indicator %q", "supertrend")
	suite.Equal(ErrCodeIndicatorNotFound, err.Code)
	suite.Contains(err.Error(), `unknown indicator "supertrend"`)
}

func (suite *ErrorTestSuite) TestWrapAndUnwrap() {
	cause := fmt.Errorf("io failure")
	err := Wrap(ErrCodeQueryFailed, "failed to query ledger", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Contains(err.Error(), "io failure")
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeNoDataFound, "no bars")
	suite.Equal(ErrCodeNoDataFound, GetCode(err))
	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain")))
}

func (suite *ErrorTestSuite) TestHasCodeThroughChain() {
	inner := New(ErrCodeInvalidStopLoss, "stop above entry")
	outer := Wrap(ErrCodeInvalidPlan, "plan rejected", inner)
	// GetCode finds the outermost typed error.
	suite.True(HasCode(outer, ErrCodeInvalidPlan))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(26, 10, "AAPL", "need %d bars, have %d", 26, 10)
	suite.True(IsInsufficientDataError(err))
	suite.Equal(26, err.Required)
	suite.Equal(10, err.Actual)
	suite.False(IsInsufficientDataError(fmt.Errorf("plain")))
}
