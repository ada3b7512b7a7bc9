package service

import (
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

// Freshness describes the snapshot a view was computed from.
type Freshness struct {
	Airport    string    `json:"airport"`
	SnapshotID string    `json:"snapshot_id"`
	AsOf       time.Time `json:"as_of"`
	Stale      bool      `json:"stale"`
	Warning    string    `json:"warning,omitempty"`
}

// FlightsView lists upcoming flights.
type FlightsView struct {
	Freshness
	Direction model.Direction `json:"direction"`
	Flights   []model.Flight  `json:"flights"`
}

// ClustersView lists upcoming surge clusters.
type ClustersView struct {
	Freshness
	Clusters []model.Cluster `json:"clusters"`
}

// BestHoursView lists the busiest upcoming hours.
type BestHoursView struct {
	Freshness
	Direction    model.Direction   `json:"direction"`
	HorizonHours int               `json:"horizon_hours"`
	Hours        []model.HourCount `json:"hours"`
}

// SurgeView is the near-term arrival surge level.
type SurgeView struct {
	Freshness
	Level        model.SurgeLevel `json:"level"`
	Count        int              `json:"count"`
	HorizonHours int              `json:"horizon_hours"`
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
}

// SummaryView is an hour-of-day histogram of upcoming flights.
type SummaryView struct {
	Freshness
	Direction model.Direction `json:"direction"`
	Counts    [24]int         `json:"counts"`
	Total     int             `json:"total"`
	PeakHour  int             `json:"peak_hour"`
	PeakCount int             `json:"peak_count"`
}
