// Package cluster finds surge clusters: groups of arrivals landing close
// enough together to release their passengers at the curb at once.
package cluster

import (
	"sort"
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

const (
	// Window is the span, measured from a cluster's first flight, that every
	// member must fall within. The boundary is inclusive.
	Window = 20 * time.Minute
	// MinSize is the smallest group reported as a cluster.
	MinSize = 3
)

// Detect partitions arrivals into non-overlapping, maximal clusters.
//
// Departures are ignored. Flights are put in stable time order first, so
// identical timestamps keep feed order. From each unclaimed flight the window
// is grown while the next flight is within Window of the anchor; a window of
// at least MinSize is emitted and scanning resumes after it, otherwise the
// anchor stays unclustered and scanning advances by one.
func Detect(flights []model.Flight) []model.Cluster {
	arrivals := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		if f.IsArrival() {
			arrivals = append(arrivals, f)
		}
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].Scheduled.Before(arrivals[j].Scheduled)
	})

	var out []model.Cluster
	for i := 0; i < len(arrivals); {
		anchor := arrivals[i].Scheduled
		j := i
		for j+1 < len(arrivals) && arrivals[j+1].Scheduled.Sub(anchor) <= Window {
			j++
		}
		if j-i+1 < MinSize {
			i++
			continue
		}
		out = append(out, build(arrivals[i:j+1]))
		i = j + 1
	}
	return out
}

func build(members []model.Flight) model.Cluster {
	flights := append([]model.Flight(nil), members...)
	seen := make(map[model.Zone]bool, 3)
	var zones []model.Zone
	for _, f := range flights {
		if !seen[f.Zone] {
			seen[f.Zone] = true
			zones = append(zones, f.Zone)
		}
	}
	return model.Cluster{
		Anchor:  flights[0].Scheduled,
		End:     flights[len(flights)-1].Scheduled,
		Flights: flights,
		Zones:   zones,
	}
}
