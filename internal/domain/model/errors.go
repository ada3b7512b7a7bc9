package model

import "errors"

// Sentinel kinds shared across domain packages.
var (
	ErrMalformedRecord  = errors.New("malformed flight record")
	ErrInvalidDirection = errors.New("invalid direction")
)
