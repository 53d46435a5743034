package models

import "errors"

// Sentinel errors shared by all services. Handlers classify these with
// errors.Is when mapping to HTTP status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInconsistent = errors.New("inconsistent state")
	ErrStorage      = errors.New("storage failure")
)
