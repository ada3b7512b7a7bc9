package demand

import (
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

// Default surge configuration.
const (
	DefaultModerateThreshold = 3
	DefaultHighThreshold     = 6

	MinSurgeHorizon = 1
	MaxSurgeHorizon = 3
)

// Option applies a configuration option to the SurgeScorer.
type Option func(*SurgeScorer)

// WithThresholds sets the arrival counts at which the level becomes Moderate
// and High. Values are ignored unless 0 < moderate <= high.
func WithThresholds(moderate, high int) Option {
	return func(s *SurgeScorer) {
		if moderate > 0 && high >= moderate {
			s.moderate = moderate
			s.high = high
		}
	}
}

// SurgeScorer buckets near-term arrival volume into a SurgeLevel.
type SurgeScorer struct {
	moderate int
	high     int
}

// NewSurgeScorer creates a scorer with the default thresholds unless
// overridden.
func NewSurgeScorer(opts ...Option) *SurgeScorer {
	s := &SurgeScorer{
		moderate: DefaultModerateThreshold,
		high:     DefaultHighThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thresholds returns the Moderate and High cut-offs.
func (s *SurgeScorer) Thresholds() (moderate, high int) {
	return s.moderate, s.high
}

// Score counts arrivals in [now, now+h hours) and maps the count to a
// level. h is clamped to [MinSurgeHorizon, MaxSurgeHorizon].
func (s *SurgeScorer) Score(flights []model.Flight, now time.Time, horizonHours int) (model.SurgeLevel, int) {
	h := ClampHorizon(horizonHours)
	end := now.Add(time.Duration(h) * time.Hour)

	count := 0
	for _, f := range flights {
		if !f.IsArrival() {
			continue
		}
		if !f.Scheduled.Before(now) && f.Scheduled.Before(end) {
			count++
		}
	}
	return s.Level(count), count
}

// Level maps an arrival count to a SurgeLevel.
func (s *SurgeScorer) Level(count int) model.SurgeLevel {
	switch {
	case count < s.moderate:
		return model.SurgeLow
	case count < s.high:
		return model.SurgeModerate
	default:
		return model.SurgeHigh
	}
}

// ClampHorizon bounds a surge look-ahead to the supported range.
func ClampHorizon(h int) int {
	if h < MinSurgeHorizon {
		return MinSurgeHorizon
	}
	if h > MaxSurgeHorizon {
		return MaxSurgeHorizon
	}
	return h
}
