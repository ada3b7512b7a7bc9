package airport

import "errors"

// Sentinel kinds for airport lookups.
var (
	ErrUnknownAirport = errors.New("unknown airport")
	ErrInvalidProfile = errors.New("invalid airport profile")
)
