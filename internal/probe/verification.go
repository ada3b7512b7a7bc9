package probe

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a report that breaks one of the published guarantees.
var ErrInvariant = errors.New("report invariant violated")

// distinctSnapshots counts the fresh snapshot IDs seen in a burst.
// Concurrent callers on one key are expected to share a single snapshot.
func distinctSnapshots(reports []FlightsReport) (ids map[string]int, stale int) {
	ids = make(map[string]int)
	for _, r := range reports {
		if r.Stale {
			stale++
			continue
		}
		ids[r.SnapshotID]++
	}
	return ids, stale
}

// verifyFlights checks ordering and curbside timing of a flights report.
func verifyFlights(r FlightsReport) error {
	for i, f := range r.Flights {
		if i > 0 && f.Scheduled.Before(r.Flights[i-1].Scheduled) {
			return fmt.Errorf("%w: flight %s out of order", ErrInvariant, f.Number)
		}
		if f.Direction == "arrival" {
			if f.ReadyAt == nil || !f.ReadyAt.Equal(f.Scheduled.Add(ReadyOffset)) {
				return fmt.Errorf("%w: arrival %s ready time is not scheduled+%s", ErrInvariant, f.Number, ReadyOffset)
			}
		}
	}
	return nil
}

// verifyClusters checks size, span and ordering of the surge clusters.
func verifyClusters(r ClustersReport) error {
	for i, c := range r.Clusters {
		if len(c.Flights) < ClusterMinSize {
			return fmt.Errorf("%w: cluster %d has %d flights", ErrInvariant, i, len(c.Flights))
		}
		first := c.Flights[0].Scheduled
		last := c.Flights[len(c.Flights)-1].Scheduled
		if !c.Anchor.Equal(first) {
			return fmt.Errorf("%w: cluster %d anchor is not its first flight", ErrInvariant, i)
		}
		if last.Sub(first) > ClusterWindow {
			return fmt.Errorf("%w: cluster %d spans %s", ErrInvariant, i, last.Sub(first))
		}
		if i > 0 {
			prev := r.Clusters[i-1]
			if !first.After(prev.Flights[len(prev.Flights)-1].Scheduled) {
				return fmt.Errorf("%w: cluster %d overlaps cluster %d", ErrInvariant, i, i-1)
			}
		}
	}
	return nil
}

// verifyBestHours checks the ranking is short and ordered.
func verifyBestHours(r BestHoursReport) error {
	if len(r.Hours) > MaxBestHours {
		return fmt.Errorf("%w: %d best hours returned", ErrInvariant, len(r.Hours))
	}
	for i := 1; i < len(r.Hours); i++ {
		a, b := r.Hours[i-1], r.Hours[i]
		if b.Count > a.Count || (b.Count == a.Count && b.Start.Before(a.Start)) {
			return fmt.Errorf("%w: best hours not ranked at position %d", ErrInvariant, i)
		}
	}
	return nil
}

// verifySummary checks the histogram total and peak agree with the counts.
func verifySummary(r SummaryReport) error {
	total, peak, peakCount := 0, 0, 0
	for h, n := range r.Counts {
		total += n
		if n > peakCount {
			peak, peakCount = h, n
		}
	}
	if total != r.Total {
		return fmt.Errorf("%w: summary total %d, counts sum to %d", ErrInvariant, r.Total, total)
	}
	if total > 0 && (peak != r.PeakHour || peakCount != r.PeakCount) {
		return fmt.Errorf("%w: summary peak %02d:00 (%d), expected %02d:00 (%d)",
			ErrInvariant, r.PeakHour, r.PeakCount, peak, peakCount)
	}
	return nil
}

// verifySurge checks the level is one of the published buckets.
func verifySurge(r SurgeReport) error {
	switch r.Level {
	case "Low", "Moderate", "High":
	default:
		return fmt.Errorf("%w: unknown surge level %q", ErrInvariant, r.Level)
	}
	if r.HorizonHours < 1 || r.HorizonHours > 3 {
		return fmt.Errorf("%w: surge horizon %dh", ErrInvariant, r.HorizonHours)
	}
	return nil
}
