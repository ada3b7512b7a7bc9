package service

import (
	"strings"
	"time"

	"github.com/okian/curbcast/internal/adapters/feed"
	"github.com/okian/curbcast/internal/adapters/repository"
	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFetcher sets the schedule source.
func WithFetcher(f feed.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithRegistry sets the airports the service can answer for.
func WithRegistry(r *airport.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithDefaultAirport sets the airport used when a request names none.
func WithDefaultAirport(code string) Option {
	return func(s *Service) {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			s.defaultAirport = code
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTL sets how long a snapshot is served before refetching.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithServeStale enables degraded mode: a failed refresh falls back to the
// last retained snapshot, flagged stale.
func WithServeStale(enabled bool) Option {
	return func(s *Service) {
		s.serveStale = enabled
	}
}

// WithFeedWindow sets the schedule span requested per fetch.
func WithFeedWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.feedWindow = d
		}
	}
}

// WithSurgeThresholds sets the Moderate and High arrival counts.
func WithSurgeThresholds(moderate, high int) Option {
	return func(s *Service) {
		s.surgeModerate, s.surgeHigh = moderate, high
	}
}

// WithSurgeHorizon sets the surge look-ahead in hours.
func WithSurgeHorizon(hours int) Option {
	return func(s *Service) {
		if hours > 0 {
			s.surgeHorizon = hours
		}
	}
}

// WithBestHoursHorizon sets the best-hours look-ahead.
func WithBestHoursHorizon(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.bestHorizon = d
		}
	}
}
