package report

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound      = errors.New("report not found")
	ErrLoadFailed    = errors.New("load failed")
	ErrSaveFailed    = errors.New("save failed")
	ErrInvalidID     = errors.New("invalid report id")
	ErrUnknownDriver = errors.New("unknown store driver")
)
