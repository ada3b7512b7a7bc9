package repository

import (
	"time"

	"github.com/okian/curbcast/pkg/logger"
)

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithClock replaces time.Now for freshness decisions.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFetchTimeout bounds a single shared fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *SnapshotStore) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithStaleRetention sets how long an entry is kept after its TTL so it can
// be served in degraded mode.
func WithStaleRetention(d time.Duration) Option {
	return func(s *SnapshotStore) {
		if d >= 0 {
			s.staleRetention = d
		}
	}
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *SnapshotStore) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SnapshotStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// LookupOption adjusts a single GetOrFetch or Refresh call.
type LookupOption func(*lookup)

type lookup struct {
	allowStale bool
}

// AllowStale lets a failed fetch fall back to a retained expired entry.
func AllowStale() LookupOption {
	return func(l *lookup) { l.allowStale = true }
}
