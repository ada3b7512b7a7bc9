// Package demand turns a flight list into rideshare demand signals: the
// busiest upcoming hours, a near-term surge level and a daily histogram.
package demand

import (
	"sort"
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

// MaxBestHours caps the number of buckets returned by RankHours.
const MaxBestHours = 3

// DefaultHorizon is the look-ahead used for best-hours ranking when the
// caller has no preference.
const DefaultHorizon = 12 * time.Hour

// RankHours counts flights scheduled in [now, now+horizon), grouped by local
// clock hour, and returns the busiest buckets. Busier buckets come first and
// ties go to the earlier bucket. Bucket identity is the hour's start instant,
// so a window that spans midnight keeps both days' 23:00 apart.
func RankHours(flights []model.Flight, now time.Time, horizon time.Duration) []model.HourCount {
	if horizon <= 0 {
		return nil
	}
	end := now.Add(horizon)

	index := make(map[int64]int)
	var buckets []model.HourCount
	for _, f := range flights {
		if f.Scheduled.Before(now) || !f.Scheduled.Before(end) {
			continue
		}
		start := hourStart(f.Scheduled)
		key := start.Unix()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, model.HourCount{Hour: start.Hour(), Start: start})
		}
		buckets[i].Count++
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Start.Before(buckets[j].Start)
	})
	if len(buckets) > MaxBestHours {
		buckets = buckets[:MaxBestHours]
	}
	return buckets
}

// hourStart truncates t to the top of its hour in t's own location.
func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// Histogram holds one flight count per local hour of day.
type Histogram [24]int

// HourlyCounts buckets every flight by its local hour of day.
func HourlyCounts(flights []model.Flight) Histogram {
	var h Histogram
	for _, f := range flights {
		h[f.Scheduled.Hour()]++
	}
	return h
}

// Total returns the number of flights counted.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Peak returns the busiest hour, preferring the earliest on ties. ok is
// false for an empty histogram.
func (h Histogram) Peak() (hour, count int, ok bool) {
	for i, c := range h {
		if c > count {
			hour, count = i, c
		}
	}
	return hour, count, count > 0
}
