package service

import (
	"context"
	"sort"

	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/internal/domain/filter"
	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/internal/domain/timing"
	"github.com/okian/curbcast/internal/domain/zone"
	"github.com/okian/curbcast/pkg/logger"
	"github.com/okian/curbcast/pkg/metrics"
)

// pipeline turns one airport's raw feed page into a snapshot.
type pipeline struct {
	profile    airport.Profile
	filter     *filter.Passenger
	normalizer *timing.Normalizer
	resolver   *zone.Resolver
	logger     logger.Logger
}

func newPipeline(p airport.Profile, log logger.Logger) *pipeline {
	return &pipeline{
		profile: p,
		filter: filter.NewPassenger(
			filter.WithExcludedCarriers(p.ExcludedCarriers...),
			filter.WithDropObserver(func(r filter.Reason) { metrics.RecordFiltered(string(r)) }),
		),
		normalizer: timing.NewNormalizer(p.Location),
		resolver:   zone.NewResolver(p.Zones),
		logger:     log,
	}
}

// build filters, normalizes and zone-resolves raw, returning flights in
// stable scheduled-time order.
func (p *pipeline) build(ctx context.Context, raw []model.RawFlight) []model.Flight {
	kept := p.filter.Apply(raw)
	out := make([]model.Flight, 0, len(kept))
	for _, r := range kept {
		f, err := p.normalizer.Normalize(r)
		if err != nil {
			metrics.RecordMalformedRecord(r.Direction.String())
			p.logger.Warn(ctx, "skipping malformed flight",
				logger.String("airport", p.profile.Code),
				logger.String("number", r.Number),
				logger.Error(err),
			)
			continue
		}
		f.Zone = p.resolver.Resolve(f.Airline)
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Scheduled.Before(out[j].Scheduled)
	})
	return out
}
