// Package zone maps airline codes to terminal pickup zones.
package zone

import (
	"strings"

	"github.com/okian/curbcast/internal/domain/model"
)

// Table maps IATA airline codes to pickup zones. It is data: swapping
// airports means swapping the table.
type Table map[string]model.Zone

// ParseTable builds a Table from string values as they appear in config,
// e.g. {"AS": "C", "WN": "AB"}.
func ParseTable(raw map[string]string) (Table, error) {
	t := make(Table, len(raw))
	for code, v := range raw {
		z, err := model.ParseZone(v)
		if err != nil {
			return nil, err
		}
		t[normalize(code)] = z
	}
	return t, nil
}

// Resolver looks up zones in a fixed table.
type Resolver struct {
	table Table
}

// NewResolver copies table so later mutation by the caller has no effect.
func NewResolver(table Table) *Resolver {
	t := make(Table, len(table))
	for code, z := range table {
		t[normalize(code)] = z
	}
	return &Resolver{table: t}
}

// Resolve returns the zone for code, or model.ZoneUnknown when the code is
// not in the table.
func (r *Resolver) Resolve(code string) model.Zone {
	if z, ok := r.table[normalize(code)]; ok {
		return z
	}
	return model.ZoneUnknown
}

// Len returns the number of mapped carriers.
func (r *Resolver) Len() int { return len(r.table) }

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
