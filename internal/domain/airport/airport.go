// Package airport holds per-airport rule tables: timezone, pickup zones and
// carriers that never carry rideshare passengers.
package airport

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // airport zones must resolve on hosts without a zoneinfo database

	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/internal/domain/zone"
)

// DefaultCode is the airport served when a request names none.
const DefaultCode = "GEG"

// Profile is the swappable rule table for one airport.
type Profile struct {
	Code             string
	Location         *time.Location
	Zones            zone.Table
	ExcludedCarriers []string
}

// New builds a Profile from config-shaped values.
func New(code, timezone string, zones map[string]string, excluded []string) (Profile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Profile{}, fmt.Errorf("%w: empty airport code", ErrInvalidProfile)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, code, err)
	}
	table, err := zone.ParseTable(zones)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, code, err)
	}
	return Profile{
		Code:             code,
		Location:         loc,
		Zones:            table,
		ExcludedCarriers: append([]string(nil), excluded...),
	}, nil
}

// Spokane returns the built-in profile for Spokane International (GEG).
func Spokane() Profile {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		// tzdata is embedded above, so this only fires on a corrupt build.
		panic(err)
	}
	return Profile{
		Code:     DefaultCode,
		Location: loc,
		Zones: zone.Table{
			"WN": model.ZoneAB,
			"DL": model.ZoneAB,
			"UA": model.ZoneAB,
			"G4": model.ZoneAB,
			"F9": model.ZoneAB,
			"SY": model.ZoneAB,
			"AS": model.ZoneC,
			"QX": model.ZoneC,
			"AA": model.ZoneC,
		},
		ExcludedCarriers: []string{
			"FX", // FedEx
			"5X", // UPS
			"5Y", // Atlas
			"K4", // Kalitta
			"GB", // ABX
			"8C", // ATI
			"PO", // Polar
			"QY", // DHL/EAT
			"1I", // NetJets
		},
	}
}

// Registry resolves airport codes to profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry indexes profiles by code. Later duplicates win.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.profiles[strings.ToUpper(p.Code)] = p
	}
	return r
}

// Lookup returns the profile for code or ErrUnknownAirport.
func (r *Registry) Lookup(code string) (Profile, error) {
	p, ok := r.profiles[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownAirport, code)
	}
	return p, nil
}

// Codes lists registered airports in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.profiles))
	for c := range r.profiles {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
