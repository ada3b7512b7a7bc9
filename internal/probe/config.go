package probe

import (
	"time"

	"github.com/okian/curbcast/pkg/logger"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Airport   string        // Airport to probe, empty for the service default
	Direction string        // arrival or departure
	Requests  int           // Concurrent report requests in the burst
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for probe output
	Verbose   bool          // Enable verbose logging
	Logger    logger.Logger // Nil discards probe output
}

func (c *Config) log() logger.Logger {
	if c.Logger == nil {
		return logger.NewNop()
	}
	return c.Logger
}

// Freshness mirrors the snapshot metadata carried by every report.
type Freshness struct {
	Airport    string    `json:"airport"`
	SnapshotID string    `json:"snapshot_id"`
	AsOf       time.Time `json:"as_of"`
	Stale      bool      `json:"stale"`
	Warning    string    `json:"warning,omitempty"`
}

// Flight mirrors one flight in a report.
type Flight struct {
	Number    string     `json:"number"`
	Direction string     `json:"direction"`
	Scheduled time.Time  `json:"scheduled"`
	Status    string     `json:"status"`
	Zone      string     `json:"zone"`
	ReadyAt   *time.Time `json:"ready_at,omitempty"`
}

// FlightsReport mirrors GET /flights.
type FlightsReport struct {
	Freshness
	Direction string   `json:"direction"`
	Flights   []Flight `json:"flights"`
}

// Cluster mirrors one surge cluster.
type Cluster struct {
	Anchor  time.Time `json:"anchor"`
	End     time.Time `json:"end"`
	Flights []Flight  `json:"flights"`
	Zones   []string  `json:"zones"`
}

// ClustersReport mirrors GET /clusters.
type ClustersReport struct {
	Freshness
	Clusters []Cluster `json:"clusters"`
}

// HourCount mirrors one ranked hour.
type HourCount struct {
	Hour  int       `json:"hour"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// BestHoursReport mirrors GET /best-hours.
type BestHoursReport struct {
	Freshness
	HorizonHours int         `json:"horizon_hours"`
	Hours        []HourCount `json:"hours"`
}

// SurgeReport mirrors GET /surge.
type SurgeReport struct {
	Freshness
	Level        string `json:"level"`
	Count        int    `json:"count"`
	HorizonHours int    `json:"horizon_hours"`
}

// SummaryReport mirrors GET /summary.
type SummaryReport struct {
	Freshness
	Counts    [24]int `json:"counts"`
	Total     int     `json:"total"`
	PeakHour  int     `json:"peak_hour"`
	PeakCount int     `json:"peak_count"`
}

// Stats holds probe statistics.
type Stats struct {
	RequestsSent       int
	RequestsSuccessful int
	RequestsFailed     int
	DistinctSnapshots  int
	StaleResponses     int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
