package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/pkg/logger"
	"github.com/okian/curbcast/pkg/metrics"
)

// Default store configuration.
const (
	defaultFetchTimeout    = 15 * time.Second
	defaultStaleRetention  = time.Hour
	defaultCleanupInterval = 5 * time.Minute
)

// SnapshotStore is an in-memory Store.
//
// Entries live in a go-cache map whose item lifetime is ttl plus the stale
// retention, so expired snapshots stay available for degraded reads until
// the janitor purges them. Freshness itself is judged with the store clock.
// Concurrent misses on one key share a single fetch. Writes are ordered by
// fetch start: a snapshot never replaces one whose fetch started later.
type SnapshotStore struct {
	items *cache.Cache
	group singleflight.Group
	// mu serializes the compare-and-set on write.
	mu sync.Mutex

	now             func() time.Time
	fetchTimeout    time.Duration
	staleRetention  time.Duration
	cleanupInterval time.Duration
	logger          logger.Logger
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore constructs a store with configuration options.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:             time.Now,
		fetchTimeout:    defaultFetchTimeout,
		staleRetention:  defaultStaleRetention,
		cleanupInterval: defaultCleanupInterval,
		logger:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = cache.New(cache.NoExpiration, s.cleanupInterval)
	s.items.OnEvicted(func(string, interface{}) {
		metrics.UpdateCacheEntries(s.items.ItemCount())
	})
	return s
}

// GetOrFetch implements Store.GetOrFetch.
func (s *SnapshotStore) GetOrFetch(ctx context.Context, key Key, fetch FetchFunc, ttl time.Duration, opts ...LookupOption) (Result, error) {
	if e, ok := s.load(key); ok && e.Fresh(s.now()) {
		metrics.RecordCacheHit(key.String())
		return Result{Entry: e}, nil
	}
	metrics.RecordCacheMiss(key.String())
	return s.do(ctx, key, fetch, ttl, false, opts)
}

// Refresh implements Store.Refresh.
func (s *SnapshotStore) Refresh(ctx context.Context, key Key, fetch FetchFunc, ttl time.Duration, opts ...LookupOption) (Result, error) {
	return s.do(ctx, key, fetch, ttl, true, opts)
}

func (s *SnapshotStore) do(ctx context.Context, key Key, fetch FetchFunc, ttl time.Duration, force bool, opts []LookupOption) (Result, error) {
	var l lookup
	for _, opt := range opts {
		opt(&l)
	}

	k := key.String()
	if force {
		s.group.Forget(k)
	}
	ch := s.group.DoChan(k, func() (interface{}, error) {
		if !force {
			// A caller that missed just before another flight stored its
			// result must not fetch again.
			if e, ok := s.load(key); ok && e.Fresh(s.now()) {
				return e, nil
			}
		}
		return s.run(ctx, key, fetch, ttl)
	})

	select {
	case <-ctx.Done():
		return s.fallback(ctx, key, l, &FetchError{Key: key, Err: ctx.Err()})
	case res := <-ch:
		if res.Shared {
			metrics.RecordCacheCoalesced(k)
		}
		if res.Err != nil {
			return s.fallback(ctx, key, l, res.Err)
		}
		e, _ := res.Val.(Entry)
		metrics.UpdateSnapshotAge(k, s.now().Sub(e.FetchedAt).Seconds())
		return Result{Entry: e}, nil
	}
}

type outcome struct {
	flights []model.Flight
	err     error
}

// run performs one fetch on behalf of every waiter. It is detached from the
// first caller's cancellation and bounded by the store's fetch timeout.
func (s *SnapshotStore) run(ctx context.Context, key Key, fetch FetchFunc, ttl time.Duration) (Entry, error) {
	k := key.String()
	started := s.now()
	begin := time.Now()

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		flights, err := fetch(fctx)
		done <- outcome{flights: flights, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-fctx.Done():
		out.err = fctx.Err()
	}

	latencyMs := float64(time.Since(begin).Milliseconds())
	if out.err != nil {
		metrics.RecordFetch(k, "error", latencyMs)
		metrics.RecordErrorByComponent("repository", "fetch")
		s.logger.Warn(ctx, "snapshot fetch failed",
			logger.String("key", k),
			logger.Float64("latency_ms", latencyMs),
			logger.Error(out.err),
		)
		return Entry{}, &FetchError{Key: key, Err: out.err}
	}
	metrics.RecordFetch(k, "success", latencyMs)

	return s.store(ctx, Entry{
		ID:        uuid.NewString(),
		Key:       key,
		FetchedAt: started,
		Flights:   out.flights,
		TTL:       ttl,
	}), nil
}

// store writes e unless a snapshot from a later fetch is already present,
// and returns whichever entry is current afterwards.
func (s *SnapshotStore) store(ctx context.Context, e Entry) Entry {
	k := e.Key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.load(e.Key); ok && cur.FetchedAt.After(e.FetchedAt) {
		metrics.RecordStaleWriteDropped(k)
		s.logger.Debug(ctx, "older snapshot discarded",
			logger.String("key", k),
			logger.Time("fetched_at", e.FetchedAt),
			logger.Time("current", cur.FetchedAt),
		)
		return cur
	}

	s.items.Set(k, e, e.TTL+s.staleRetention)
	metrics.UpdateCacheEntries(s.items.ItemCount())
	metrics.UpdateSnapshotFlights(k, len(e.Flights))
	s.logger.Debug(ctx, "snapshot stored",
		logger.String("key", k),
		logger.String("snapshot", e.ID),
		logger.Int("flights", len(e.Flights)),
	)
	return e
}

func (s *SnapshotStore) fallback(ctx context.Context, key Key, l lookup, err error) (Result, error) {
	if !l.allowStale {
		return Result{}, err
	}
	e, ok := s.load(key)
	if !ok {
		return Result{}, err
	}
	stale := !e.Fresh(s.now())
	if stale {
		metrics.RecordStaleServed(key.String())
	}
	s.logger.Warn(ctx, "serving retained snapshot after failed fetch",
		logger.String("key", key.String()),
		logger.String("snapshot", e.ID),
		logger.Bool("stale", stale),
		logger.Error(err),
	)
	return Result{Entry: e, Stale: stale, Warning: err}, nil
}

func (s *SnapshotStore) load(key Key) (Entry, bool) {
	v, ok := s.items.Get(key.String())
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

// Peek implements Store.Peek.
func (s *SnapshotStore) Peek(key Key) (Entry, bool) {
	return s.load(key)
}

// Invalidate implements Store.Invalidate.
func (s *SnapshotStore) Invalidate(key Key) {
	s.items.Delete(key.String())
}

// Len implements Store.Len.
func (s *SnapshotStore) Len() int {
	return s.items.ItemCount()
}

// Keys implements Store.Keys.
func (s *SnapshotStore) Keys() []Key {
	items := s.items.Items()
	keys := make([]Key, 0, len(items))
	for _, it := range items {
		if e, ok := it.Object.(Entry); ok {
			keys = append(keys, e.Key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
