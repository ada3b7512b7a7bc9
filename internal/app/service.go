// Package service wires the demand-analysis pipeline behind the API the
// HTTP layer serves: cached, filtered flight snapshots and the signals
// derived from them.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/curbcast/internal/adapters/feed"
	"github.com/okian/curbcast/internal/adapters/repository"
	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/internal/domain/cluster"
	"github.com/okian/curbcast/internal/domain/demand"
	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/pkg/logger"
	"github.com/okian/curbcast/pkg/metrics"
)

// Default service configuration.
const (
	defaultTTL        = 5 * time.Minute
	defaultFeedWindow = 12 * time.Hour
	defaultSurgeHours = 1
)

// Service answers demand questions for the registered airports.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher   feed.Fetcher
	store     repository.Store
	registry  *airport.Registry
	pipelines map[string]*pipeline
	surge     *demand.SurgeScorer

	// Configuration
	defaultAirport string
	ttl            time.Duration
	serveStale     bool
	feedWindow     time.Duration
	surgeModerate  int
	surgeHigh      int
	surgeHorizon   int
	bestHorizon    time.Duration
	now            func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		registry:       airport.NewRegistry(airport.Spokane()),
		defaultAirport: airport.DefaultCode,
		ttl:            defaultTTL,
		feedWindow:     defaultFeedWindow,
		surgeModerate:  demand.DefaultModerateThreshold,
		surgeHigh:      demand.DefaultHighThreshold,
		surgeHorizon:   defaultSurgeHours,
		bestHorizon:    demand.DefaultHorizon,
		now:            time.Now,
		logger:         logger.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewSnapshotStore(repository.WithLogger(s.logger.Named("repository")))
	}
	s.surge = demand.NewSurgeScorer(demand.WithThresholds(s.surgeModerate, s.surgeHigh))
	s.pipelines = make(map[string]*pipeline)
	for _, code := range s.registry.Codes() {
		p, _ := s.registry.Lookup(code)
		s.pipelines[code] = newPipeline(p, s.logger)
	}

	return s
}

// Start marks the service ready. Snapshots are fetched lazily on first use.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if _, err := s.registry.Lookup(s.defaultAirport); err != nil {
		return fmt.Errorf("service.start: default airport: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "demand service started",
		logger.Any("airports", s.registry.Codes()),
		logger.String("default_airport", s.defaultAirport),
		logger.Duration("ttl", s.ttl),
		logger.Bool("serve_stale", s.serveStale),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "demand service stopped")
}

// DefaultAirport returns the airport used when a request names none.
func (s *Service) DefaultAirport() string { return s.defaultAirport }

// Flights returns the upcoming flights for one direction.
func (s *Service) Flights(ctx context.Context, code string, dir model.Direction) (FlightsView, error) {
	snap, err := s.snapshot(ctx, code, dir)
	if err != nil {
		return FlightsView{}, err
	}
	return FlightsView{Freshness: snap.freshness, Direction: dir, Flights: snap.upcoming}, nil
}

// Delays returns upcoming flights that are delayed or cancelled.
func (s *Service) Delays(ctx context.Context, code string, dir model.Direction) (FlightsView, error) {
	snap, err := s.snapshot(ctx, code, dir)
	if err != nil {
		return FlightsView{}, err
	}
	out := make([]model.Flight, 0)
	for _, f := range snap.upcoming {
		if f.Status.Disrupted() {
			out = append(out, f)
		}
	}
	return FlightsView{Freshness: snap.freshness, Direction: dir, Flights: out}, nil
}

// Clusters returns surge clusters among upcoming arrivals.
func (s *Service) Clusters(ctx context.Context, code string) (ClustersView, error) {
	snap, err := s.snapshot(ctx, code, model.Arrival)
	if err != nil {
		return ClustersView{}, err
	}
	clusters := cluster.Detect(snap.upcoming)
	if clusters == nil {
		clusters = []model.Cluster{}
	}
	return ClustersView{Freshness: snap.freshness, Clusters: clusters}, nil
}

// BestHours ranks the busiest upcoming clock hours.
func (s *Service) BestHours(ctx context.Context, code string, dir model.Direction) (BestHoursView, error) {
	snap, err := s.snapshot(ctx, code, dir)
	if err != nil {
		return BestHoursView{}, err
	}
	hours := demand.RankHours(snap.upcoming, snap.now, s.bestHorizon)
	if hours == nil {
		hours = []model.HourCount{}
	}
	return BestHoursView{
		Freshness:    snap.freshness,
		Direction:    dir,
		HorizonHours: int(s.bestHorizon / time.Hour),
		Hours:        hours,
	}, nil
}

// SurgeScore rates near-term arrival volume.
func (s *Service) SurgeScore(ctx context.Context, code string) (SurgeView, error) {
	snap, err := s.snapshot(ctx, code, model.Arrival)
	if err != nil {
		return SurgeView{}, err
	}
	h := demand.ClampHorizon(s.surgeHorizon)
	level, count := s.surge.Score(snap.upcoming, snap.now, h)
	metrics.UpdateSurgeLevel(snap.freshness.Airport, int(level))
	return SurgeView{
		Freshness:    snap.freshness,
		Level:        level,
		Count:        count,
		HorizonHours: h,
		From:         snap.now,
		To:           snap.now.Add(time.Duration(h) * time.Hour),
	}, nil
}

// HourlySummary buckets upcoming flights by local hour of day.
func (s *Service) HourlySummary(ctx context.Context, code string, dir model.Direction) (SummaryView, error) {
	snap, err := s.snapshot(ctx, code, dir)
	if err != nil {
		return SummaryView{}, err
	}
	h := demand.HourlyCounts(snap.upcoming)
	peak, peakCount, _ := h.Peak()
	return SummaryView{
		Freshness: snap.freshness,
		Direction: dir,
		Counts:    h,
		Total:     h.Total(),
		PeakHour:  peak,
		PeakCount: peakCount,
	}, nil
}

// Refresh refetches a schedule regardless of cache freshness.
func (s *Service) Refresh(ctx context.Context, code string, dir model.Direction) (FlightsView, error) {
	p, err := s.pipeline(code)
	if err != nil {
		return FlightsView{}, err
	}
	key := repository.NewKey(p.profile.Code, dir)
	res, err := s.store.Refresh(ctx, key, s.loader(p, dir), s.ttl, s.lookupOptions()...)
	if err != nil {
		return FlightsView{}, err
	}
	snap := s.view(p, res)
	s.logger.Info(ctx, "schedule refreshed",
		logger.String("key", key.String()),
		logger.String("snapshot", res.ID),
		logger.Int("flights", len(res.Flights)),
	)
	return FlightsView{Freshness: snap.freshness, Direction: dir, Flights: snap.upcoming}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.store.Keys()
	snapshots := make([]map[string]interface{}, 0, len(keys))
	now := s.now()
	for _, k := range keys {
		e, ok := s.store.Peek(k)
		if !ok {
			continue
		}
		snapshots = append(snapshots, map[string]interface{}{
			"key":        k.String(),
			"snapshotId": e.ID,
			"fetchedAt":  e.FetchedAt,
			"flights":    len(e.Flights),
			"fresh":      e.Fresh(now),
		})
	}
	metrics.UpdateCacheEntries(len(keys))

	return map[string]interface{}{
		"started":        s.started,
		"airports":       s.registry.Codes(),
		"defaultAirport": s.defaultAirport,
		"ttlSeconds":     int(s.ttl / time.Second),
		"serveStale":     s.serveStale,
		"cacheEntries":   len(keys),
		"snapshots":      snapshots,
	}
}

// snapshotView is a cached snapshot reduced to the flights still ahead.
type snapshotView struct {
	freshness Freshness
	upcoming  []model.Flight
	now       time.Time
}

func (s *Service) snapshot(ctx context.Context, code string, dir model.Direction) (snapshotView, error) {
	p, err := s.pipeline(code)
	if err != nil {
		return snapshotView{}, err
	}
	key := repository.NewKey(p.profile.Code, dir)
	res, err := s.store.GetOrFetch(ctx, key, s.loader(p, dir), s.ttl, s.lookupOptions()...)
	if err != nil {
		return snapshotView{}, err
	}
	if res.Stale {
		s.logger.Warn(ctx, "serving stale snapshot",
			logger.String("key", key.String()),
			logger.Time("as_of", res.FetchedAt),
			logger.Error(res.Warning),
		)
	}
	return s.view(p, res), nil
}

func (s *Service) view(p *pipeline, res repository.Result) snapshotView {
	loc := p.profile.Location
	now := s.now().In(loc)
	f := Freshness{
		Airport:    p.profile.Code,
		SnapshotID: res.ID,
		AsOf:       res.FetchedAt.In(loc),
		Stale:      res.Stale,
	}
	if res.Warning != nil {
		f.Warning = res.Warning.Error()
	}
	return snapshotView{
		freshness: f,
		upcoming:  p.normalizer.Upcoming(res.Flights, now),
		now:       now,
	}
}

func (s *Service) pipeline(code string) (*pipeline, error) {
	if code == "" {
		code = s.defaultAirport
	}
	p, err := s.registry.Lookup(code)
	if err != nil {
		return nil, err
	}
	return s.pipelines[p.Code], nil
}

func (s *Service) lookupOptions() []repository.LookupOption {
	if s.serveStale {
		return []repository.LookupOption{repository.AllowStale()}
	}
	return nil
}

// loader returns the fetch function that builds a snapshot for p and dir.
func (s *Service) loader(p *pipeline, dir model.Direction) repository.FetchFunc {
	return func(ctx context.Context) ([]model.Flight, error) {
		if s.fetcher == nil {
			return nil, ErrNoFetcher
		}
		from := s.now().In(p.profile.Location).Truncate(time.Minute)
		raw, err := s.fetcher.Fetch(ctx, feed.Request{
			Airport:   p.profile.Code,
			Direction: dir,
			From:      from,
			To:        from.Add(s.feedWindow),
		})
		if err != nil {
			return nil, err
		}
		return p.build(ctx, raw), nil
	}
}
