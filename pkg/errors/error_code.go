package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Plan validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidPlan          ErrorCode = 101
	ErrCodeInvalidStopLoss      ErrorCode = 102
	ErrCodeInvalidTakeProfit    ErrorCode = 103
	ErrCodeInvalidType          ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 106
	ErrCodeInvalidMultiplier    ErrorCode = 107
	ErrCodeInvalidRiskPct       ErrorCode = 108
	ErrCodeInvalidDirection     ErrorCode = 109
	ErrCodeInvalidTrailing      ErrorCode = 110
	ErrCodeInvalidConfiguration ErrorCode = 111

	// Data errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeNoDataFound      ErrorCode = 201
	ErrCodeQueryFailed      ErrorCode = 202
	ErrCodeInsufficientData ErrorCode = 203
	ErrCodeUnorderedData    ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Detector and rule errors (400-499)
	ErrCodeDetectorNotFound ErrorCode = 400
	ErrCodeDetectorFailed   ErrorCode = 401
	ErrCodeRuleSyntax       ErrorCode = 402
	ErrCodeRuleDisallowed   ErrorCode = 403

	// Trading errors (500-599)
	ErrCodeOrderFailed      ErrorCode = 500
	ErrCodePositionNotFound ErrorCode = 501
	ErrCodeInvalidOrder     ErrorCode = 502

	// Backtest errors (600-699)
	ErrCodeBacktestStateNil    ErrorCode = 600
	ErrCodeBacktestInitFailed  ErrorCode = 601
	ErrCodeBacktestConfigError ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeInvalidInterval       ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703

	// Storage errors (800-899)
	ErrCodeStorageWriteFailed ErrorCode = 800
	ErrCodeStorageReadFailed  ErrorCode = 801
)
