// Package timing converts feed timestamps to airport-local time and derives
// curbside-ready times.
package timing

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

// CurbsideOffset approximates deplane-and-walk time from scheduled arrival
// to the passenger standing at the curb.
const CurbsideOffset = 20 * time.Minute

// Normalizer converts RawFlight records for one airport.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a Normalizer for the airport timezone loc. A nil loc
// means UTC.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Location returns the airport timezone.
func (n *Normalizer) Location() *time.Location { return n.loc }

// Local converts t to airport-local civil time. When zoneKnown is false the
// wall clock of t is taken to already be airport-local.
func (n *Normalizer) Local(t time.Time, zoneKnown bool) time.Time {
	if zoneKnown {
		return t.In(n.loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), n.loc)
}

// Normalize builds a Flight from raw. Zone is left unresolved.
func (n *Normalizer) Normalize(raw model.RawFlight) (model.Flight, error) {
	const op = "timing.normalize"
	if raw.Scheduled.IsZero() {
		return model.Flight{}, fmt.Errorf("%s: %w: %s has no scheduled time", op, model.ErrMalformedRecord, raw.Number)
	}
	local := n.Local(raw.Scheduled, raw.ZoneKnown)
	f := model.Flight{
		Airline:     strings.ToUpper(strings.TrimSpace(raw.Airline)),
		AirlineName: raw.AirlineName,
		Number:      strings.TrimSpace(raw.Number),
		Direction:   raw.Direction,
		Scheduled:   local,
		Status:      model.ParseStatus(raw.Status),
		Route:       raw.Route,
	}
	if raw.Direction == model.Arrival {
		ready := ReadyAt(local)
		f.ReadyAt = &ready
	}
	return f, nil
}

// ReadyAt returns the curbside-ready time for an arrival scheduled at t.
func ReadyAt(t time.Time) time.Time {
	return t.Add(CurbsideOffset)
}

// Upcoming drops flights scheduled strictly before now. Both sides are
// compared in the airport zone; order is preserved.
func (n *Normalizer) Upcoming(flights []model.Flight, now time.Time) []model.Flight {
	now = now.In(n.loc)
	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		if f.Scheduled.In(n.loc).Before(now) {
			continue
		}
		out = append(out, f)
	}
	return out
}
