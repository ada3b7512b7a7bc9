// Package repository holds flight snapshots fetched from the schedule feed.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

// Key identifies one cached schedule.
type Key struct {
	Airport   string
	Direction model.Direction
}

// NewKey builds a Key with a normalized airport code.
func NewKey(airport string, dir model.Direction) Key {
	return Key{Airport: strings.ToUpper(strings.TrimSpace(airport)), Direction: dir}
}

func (k Key) String() string { return k.Airport + "/" + k.Direction.String() }

// Entry is one stored snapshot. Flights is shared between readers and must
// not be modified.
type Entry struct {
	ID        string
	Key       Key
	FetchedAt time.Time // when the fetch that produced it started
	Flights   []model.Flight
	TTL       time.Duration
}

// Fresh reports whether the entry may be served at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Result is a snapshot handed to a caller. Stale is set when an expired
// entry is served because the refresh failed; Warning then holds the
// refresh error.
type Result struct {
	Entry
	Stale   bool
	Warning error
}

// FetchFunc produces a new snapshot's flights.
type FetchFunc func(ctx context.Context) ([]model.Flight, error)

// Store provides cached access to flight snapshots.
type Store interface {
	// GetOrFetch returns a fresh snapshot for key, fetching at most once
	// across concurrent callers when none is stored.
	GetOrFetch(ctx context.Context, key Key, fetch FetchFunc, ttl time.Duration, opts ...LookupOption) (Result, error)

	// Refresh fetches unconditionally and stores the result unless a newer
	// snapshot has been stored meanwhile.
	Refresh(ctx context.Context, key Key, fetch FetchFunc, ttl time.Duration, opts ...LookupOption) (Result, error)

	// Peek returns the retained entry for key without fetching.
	Peek(key Key) (Entry, bool)

	// Invalidate drops the entry for key.
	Invalidate(key Key)

	// Len returns the number of retained entries.
	Len() int

	// Keys returns the keys of retained entries in order.
	Keys() []Key
}
