package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoFetcher = errors.New("no schedule fetcher configured")
)
