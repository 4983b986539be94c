package ardl

import "errors"

var (
	// ErrInvalidOrder reports a malformed lag order.
	ErrInvalidOrder = errors.New("invalid lag order")
	// ErrUnknownOrderKeys reports order mapping keys that name no exog variable.
	ErrUnknownOrderKeys = errors.New("order mapping contains keys for variables not in exog")
	// ErrInvalidFixed reports fixed regressors with the wrong shape or non-finite values.
	ErrInvalidFixed = errors.New("invalid fixed regressors")
	// ErrHoldBack reports a hold back smaller than the maximum lag.
	ErrHoldBack = errors.New("hold_back must be >= the maximum lag of the endog and exog variables")
	// ErrInsufficientDOF reports a design with more columns than rows.
	ErrInsufficientDOF = errors.New("more regressors than observations available for estimation")
	// ErrExogOOSRequired reports a forecast that needs future exog values.
	ErrExogOOSRequired = errors.New("out-of-sample exog values required")
	// ErrFixedOOSRequired reports a forecast that needs future fixed regressor values.
	ErrFixedOOSRequired = errors.New("out-of-sample fixed values required")
	// ErrInvalidPrediction reports a bad start, end or dynamic offset.
	ErrInvalidPrediction = errors.New("invalid prediction range")
	// ErrMissingValues is returned by the raise missing policy.
	ErrMissingValues = errors.New("data contains missing values")
	// ErrShapeMismatch reports data whose shape differs from the model's.
	ErrShapeMismatch = errors.New("array shape does not match the model data")
	// ErrSearchTooLarge reports an order search over the candidate limit.
	ErrSearchTooLarge = errors.New("order selection search space exceeds the configured limit")
)
