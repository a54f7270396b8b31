package tools

import "errors"

// Sentinel errors for the tools registry and built-in tools.
var (
	ErrNotFound         = errors.New("tool not found")
	ErrAlreadyExists    = errors.New("tool already registered")
	ErrEmptyName        = errors.New("tool name is empty")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrResourceNotFound = errors.New("resource not found")
)
