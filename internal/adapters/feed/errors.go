package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrMissingAPIKey    = errors.New("feed api key not configured")
	ErrInvalidRequest   = errors.New("invalid feed request")
	ErrRateLimited      = errors.New("feed rate limited")
	ErrUnauthorized     = errors.New("feed rejected credentials")
	ErrUnexpectedStatus = errors.New("unexpected feed status")
	ErrDecode           = errors.New("decode feed response")
)
