// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Direction distinguishes arrivals from departures.
type Direction int

const (
	Arrival Direction = iota
	Departure
)

func (d Direction) String() string {
	if d == Departure {
		return "departure"
	}
	return "arrival"
}

// MarshalText renders the direction name in JSON payloads.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// ParseDirection accepts "arrival(s)" or "departure(s)", case-insensitive.
// An empty string means arrivals.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "arrival", "arrivals":
		return Arrival, nil
	case "departure", "departures":
		return Departure, nil
	default:
		return Arrival, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Status is the normalized flight status.
type Status int

const (
	StatusUnknown Status = iota
	StatusScheduled
	StatusDelayed
	StatusCancelled
	StatusLanded
)

var statusNames = [...]string{"Unknown", "Scheduled", "Delayed", "Cancelled", "Landed"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return statusNames[StatusUnknown]
}

// MarshalText renders the status name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseStatus maps feed status strings onto Status. Unrecognized values are
// StatusUnknown. Diverted flights will not reach the curb, so they count as
// cancelled.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scheduled", "expected", "checkin", "boarding", "gateclosed", "enroute", "approaching":
		return StatusScheduled
	case "delayed":
		return StatusDelayed
	case "cancelled", "canceled", "canceleduncertain", "diverted":
		return StatusCancelled
	case "landed", "arrived", "departed":
		return StatusLanded
	default:
		return StatusUnknown
	}
}

// Disrupted reports whether the status belongs in a delays report.
func (s Status) Disrupted() bool {
	return s == StatusDelayed || s == StatusCancelled
}

// Zone is a terminal pickup area.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneAB
	ZoneC
)

func (z Zone) String() string {
	switch z {
	case ZoneAB:
		return "AB"
	case ZoneC:
		return "C"
	default:
		return "Unknown"
	}
}

// Label is the rider-facing zone text.
func (z Zone) Label() string {
	switch z {
	case ZoneAB:
		return "Zone A/B"
	case ZoneC:
		return "Zone C"
	default:
		return "check screen"
	}
}

// MarshalText renders the zone name in JSON payloads.
func (z Zone) MarshalText() ([]byte, error) { return []byte(z.String()), nil }

// ParseZone maps table values such as "AB", "A/B" or "C" to a Zone.
func ParseZone(s string) (Zone, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "/", "")) {
	case "AB", "ZONEAB", "A", "B":
		return ZoneAB, nil
	case "C", "ZONEC":
		return ZoneC, nil
	default:
		return ZoneUnknown, fmt.Errorf("unknown zone %q", s)
	}
}

// Kind is the feed's flight-type hint.
type Kind int

const (
	KindUnknown Kind = iota
	KindPassenger
	KindCargo
	KindCharter
)

// CarrierRole says whether a record is the operating carrier's or a
// marketing codeshare.
type CarrierRole int

const (
	RoleUnknown CarrierRole = iota
	RoleOperating
	RoleMarketing
)

// RawFlight is a single feed record. It lives only inside one fetch.
type RawFlight struct {
	Airline      string    // IATA carrier code, empty when absent
	AirlineName  string    // display name
	Number       string    // marketing flight number, e.g. "AS 2345"
	Direction    Direction // arrival or departure
	Scheduled    time.Time // best known movement time
	ZoneKnown    bool      // false when the feed timestamp had no offset
	Status       string    // feed status, unparsed
	Kind         Kind
	Role         CarrierRole
	OperatedBy   string // operating flight number for codeshare records
	Route        string // counterpart airport IATA
	Registration string // aircraft registration
}

// Flight is a normalized, immutable flight.
type Flight struct {
	Airline     string     `json:"airline"`
	AirlineName string     `json:"airline_name,omitempty"`
	Number      string     `json:"number"`
	Direction   Direction  `json:"direction"`
	Scheduled   time.Time  `json:"scheduled"`
	Status      Status     `json:"status"`
	Zone        Zone       `json:"zone"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	Route       string     `json:"route,omitempty"`
}

// IsArrival reports whether f is an arrival.
func (f Flight) IsArrival() bool { return f.Direction == Arrival }

// Cluster is a maximal group of co-landing arrivals.
type Cluster struct {
	Anchor  time.Time `json:"anchor"`
	End     time.Time `json:"end"`
	Flights []Flight  `json:"flights"`
	Zones   []Zone    `json:"zones"`
}

// Size returns the number of flights in the cluster.
func (c Cluster) Size() int { return len(c.Flights) }

// HourCount is one local clock-hour bucket.
type HourCount struct {
	Hour  int       `json:"hour"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// SurgeLevel buckets near-term arrival volume.
type SurgeLevel int

const (
	SurgeLow SurgeLevel = iota
	SurgeModerate
	SurgeHigh
)

func (l SurgeLevel) String() string {
	switch l {
	case SurgeModerate:
		return "Moderate"
	case SurgeHigh:
		return "High"
	default:
		return "Low"
	}
}

// MarshalText renders the level name in JSON payloads.
func (l SurgeLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
