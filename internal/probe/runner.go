package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/curbcast/pkg/logger"
)

// Run executes the complete probe.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	config.log().Info(ctx, "starting curbcast probe",
		logger.String("baseURL", config.BaseURL),
		logger.String("airport", config.Airport),
		logger.String("direction", config.Direction),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Concurrent burst on one key
	reports, err := burst(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("request burst failed: %w", err)
	}
	ids, stale := distinctSnapshots(reports)
	stats.DistinctSnapshots = len(ids)
	stats.StaleResponses = stale
	if len(ids) > 1 {
		config.log().Warn(ctx, "burst saw more than one snapshot",
			logger.Int("snapshots", len(ids)),
			logger.Any("ids", ids))
	}

	// Step 3: Fetch every report and check its invariants
	if err := verifyReports(ctx, config, reports[0]); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(config, stats)

	config.log().Info(ctx, "probe completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			config.log().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	config.log().Info(ctx, "service is healthy")
	return nil
}

// verifyReports fetches each report endpoint and checks its guarantees.
// All failures are collected so one run shows every broken report.
func verifyReports(ctx context.Context, config *Config, flights FlightsReport) error {
	client := newHTTPClient(config.Timeout)
	errs := []error{verifyFlights(flights)}

	var clusters ClustersReport
	if err := client.getJSON(ctx, reportURL(config, "/clusters"), &clusters); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, verifyClusters(clusters))
		config.log().Info(ctx, "clusters", logger.Int("count", len(clusters.Clusters)))
	}

	var best BestHoursReport
	if err := client.getJSON(ctx, reportURL(config, "/best-hours"), &best); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, verifyBestHours(best))
		for i, h := range best.Hours {
			config.log().Info(ctx, "best hour",
				logger.Int("rank", i+1),
				logger.Int("hour", h.Hour),
				logger.Int("count", h.Count))
		}
	}

	var surge SurgeReport
	if err := client.getJSON(ctx, reportURL(config, "/surge"), &surge); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, verifySurge(surge))
		config.log().Info(ctx, "surge",
			logger.String("level", surge.Level),
			logger.Int("count", surge.Count))
	}

	var summary SummaryReport
	if err := client.getJSON(ctx, reportURL(config, "/summary"), &summary); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, verifySummary(summary))
	}

	return errors.Join(errs...)
}

// displayFinalStats prints the final probe statistics.
func displayFinalStats(config *Config, stats *Stats) {
	var successRate float64
	if stats.RequestsSent > 0 {
		successRate = float64(stats.RequestsSuccessful) / float64(stats.RequestsSent) * PercentageFactor
	}
	config.log().Info(context.Background(), "final statistics",
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsSuccessful", stats.RequestsSuccessful),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("distinctSnapshots", stats.DistinctSnapshots),
		logger.Int("staleResponses", stats.StaleResponses),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate))
}
