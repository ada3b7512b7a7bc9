// Package filter keeps only the records a rideshare driver cares about:
// scheduled passenger service, one row per physical flight.
package filter

import (
	"strings"

	"github.com/okian/curbcast/internal/domain/dedupe"
	"github.com/okian/curbcast/internal/domain/model"
)

// Reason explains why a record was dropped.
type Reason string

const (
	ReasonCargo     Reason = "cargo"
	ReasonCharter   Reason = "charter"
	ReasonExcluded  Reason = "excluded_carrier"
	ReasonPrivate   Reason = "private"
	ReasonCodeshare Reason = "codeshare"
)

// Option applies a configuration option to the Passenger filter.
type Option func(*Passenger)

// WithExcludedCarriers sets the carrier codes that never carry passengers
// through the terminal.
func WithExcludedCarriers(codes ...string) Option {
	return func(p *Passenger) {
		for _, c := range codes {
			if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
				p.excluded[c] = struct{}{}
			}
		}
	}
}

// WithDropObserver registers fn to be told about every dropped record.
func WithDropObserver(fn func(Reason)) Option {
	return func(p *Passenger) {
		if fn != nil {
			p.onDrop = fn
		}
	}
}

// Passenger is a pure, order-preserving, idempotent record filter.
type Passenger struct {
	excluded map[string]struct{}
	onDrop   func(Reason)
}

// NewPassenger creates a Passenger filter.
func NewPassenger(opts ...Option) *Passenger {
	p := &Passenger{
		excluded: make(map[string]struct{}),
		onDrop:   func(Reason) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply drops cargo, charter, private and excluded-carrier records, then
// collapses codeshare duplicates.
func (p *Passenger) Apply(raw []model.RawFlight) []model.RawFlight {
	kept := make([]model.RawFlight, 0, len(raw))
	for _, r := range raw {
		if reason, drop := p.reject(r); drop {
			p.onDrop(reason)
			continue
		}
		kept = append(kept, r)
	}
	out := dedupe.Codeshares(kept)
	for i := len(out); i < len(kept); i++ {
		p.onDrop(ReasonCodeshare)
	}
	return out
}

func (p *Passenger) reject(r model.RawFlight) (Reason, bool) {
	switch r.Kind {
	case model.KindCargo:
		return ReasonCargo, true
	case model.KindCharter:
		return ReasonCharter, true
	}
	code := strings.ToUpper(strings.TrimSpace(r.Airline))
	if code == "" {
		return ReasonPrivate, true
	}
	if _, ok := p.excluded[code]; ok {
		return ReasonExcluded, true
	}
	return "", false
}
