// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading is layered: defaults, optional .env, optional YAML file, env vars.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"
	"time"
)

// AirportConfig is one airport's rule table.
type AirportConfig struct {
	// Timezone is an IANA zone name, e.g. "America/Los_Angeles".
	Timezone string `koanf:"timezone"`

	// Zones maps carrier IATA codes to pickup zones ("AB" or "C").
	Zones map[string]string `koanf:"zones"`

	// ExcludedCarriers lists cargo and other non-passenger carrier codes.
	ExcludedCarriers []string `koanf:"excluded_carriers"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DefaultAirport is used when a request names none.
	DefaultAirport string `koanf:"default_airport"`

	// Feed client settings.
	FeedBaseURL       string  `koanf:"feed_base_url"`
	FeedHost          string  `koanf:"feed_host"`
	FeedAPIKey        string  `koanf:"feed_api_key"`
	FeedTimeoutMS     int     `koanf:"feed_timeout_ms"`
	FeedRatePerMinute float64 `koanf:"feed_rate_per_minute"`
	FeedBurst         int     `koanf:"feed_burst"`
	FeedWindowHours   int     `koanf:"feed_window_hours"`

	// Snapshot cache settings.
	CacheTTLSeconds       int  `koanf:"cache_ttl_seconds"`
	StaleRetentionSeconds int  `koanf:"stale_retention_seconds"`
	FetchTimeoutMS        int  `koanf:"fetch_timeout_ms"`
	// ServeStale opts into degraded mode: a failed refresh answers with the
	// retained snapshot, flagged stale. Off unless set.
	ServeStale            bool `koanf:"serve_stale"`

	// Demand settings.
	SurgeModerate         int `koanf:"surge_moderate"`
	SurgeHigh             int `koanf:"surge_high"`
	SurgeHorizonHours     int `koanf:"surge_horizon_hours"`
	BestHoursHorizonHours int `koanf:"best_hours_horizon_hours"`

	// Airports holds rule tables keyed by IATA code. The built-in GEG
	// profile is used unless overridden here.
	Airports map[string]AirportConfig `koanf:"airports"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		DefaultAirport:        "GEG",
		FeedBaseURL:           "https://aerodatabox.p.rapidapi.com",
		FeedHost:              "aerodatabox.p.rapidapi.com",
		FeedTimeoutMS:         10_000,
		FeedRatePerMinute:     10,
		FeedBurst:             2,
		FeedWindowHours:       12,
		CacheTTLSeconds:       300,
		StaleRetentionSeconds: 3600,
		FetchTimeoutMS:        15_000,
		SurgeModerate:         3,
		SurgeHigh:             6,
		SurgeHorizonHours:     1,
		BestHoursHorizonHours: 12,
	}
}

// CacheTTL returns the snapshot freshness window.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

// StaleRetention returns how long expired snapshots are kept for degraded mode.
func (c *Config) StaleRetention() time.Duration {
	return time.Duration(c.StaleRetentionSeconds) * time.Second
}

// FetchTimeout bounds one shared upstream fetch.
func (c *Config) FetchTimeout() time.Duration { return time.Duration(c.FetchTimeoutMS) * time.Millisecond }

// FeedTimeout bounds one HTTP round trip to the feed.
func (c *Config) FeedTimeout() time.Duration { return time.Duration(c.FeedTimeoutMS) * time.Millisecond }

// FeedWindow is the schedule span requested from the feed.
func (c *Config) FeedWindow() time.Duration { return time.Duration(c.FeedWindowHours) * time.Hour }

// BestHoursHorizon is the look-ahead for best-hours ranking.
func (c *Config) BestHoursHorizon() time.Duration {
	return time.Duration(c.BestHoursHorizonHours) * time.Hour
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DefaultAirport) == "":
		return fmt.Errorf("%w: default_airport must not be empty", ErrInvalidConfig)
	case c.CacheTTLSeconds <= 0:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	case c.StaleRetentionSeconds < 0:
		return fmt.Errorf("%w: stale_retention_seconds must not be negative", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0 || c.FeedTimeoutMS <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.FeedRatePerMinute < 0 || c.FeedBurst < 0:
		return fmt.Errorf("%w: feed rate limits must not be negative", ErrInvalidConfig)
	case c.FeedWindowHours <= 0 || c.FeedWindowHours > 12:
		return fmt.Errorf("%w: feed_window_hours must be within 1..12", ErrInvalidConfig)
	case c.SurgeModerate <= 0 || c.SurgeHigh < c.SurgeModerate:
		return fmt.Errorf("%w: surge thresholds must satisfy 0 < moderate <= high", ErrInvalidConfig)
	case c.BestHoursHorizonHours <= 0:
		return fmt.Errorf("%w: best_hours_horizon_hours must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	for code, a := range c.Airports {
		if strings.TrimSpace(a.Timezone) == "" {
			return fmt.Errorf("%w: airport %s has no timezone", ErrInvalidConfig, code)
		}
	}
	return nil
}
