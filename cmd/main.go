package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/curbcast/internal/adapters/feed"
	"github.com/okian/curbcast/internal/adapters/http/api"
	"github.com/okian/curbcast/internal/adapters/http/swagger"
	"github.com/okian/curbcast/internal/adapters/repository"
	app "github.com/okian/curbcast/internal/app"
	"github.com/okian/curbcast/internal/config"
	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/pkg/logger"
	"github.com/okian/curbcast/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our registry carries its own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		loggerInstance.Error(ctx, "invalid airport configuration", logger.Error(err))
		os.Exit(1)
	}

	svc := newService(cfg, registry, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux := newMux(ctx, svc, loggerInstance.Named("api"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("defaultAirport", svc.DefaultAirport()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// buildRegistry returns the built-in Spokane profile plus every configured
// airport. A configured GEG replaces the built-in one.
func buildRegistry(cfg *config.Config) (*airport.Registry, error) {
	profiles := []airport.Profile{airport.Spokane()}
	for code, ac := range cfg.Airports {
		p, err := airport.New(code, ac.Timezone, ac.Zones, ac.ExcludedCarriers)
		if err != nil {
			return nil, fmt.Errorf("airport %s: %w", code, err)
		}
		profiles = append(profiles, p)
	}
	return airport.NewRegistry(profiles...), nil
}

// newService wires the feed client and snapshot store into the demand service.
func newService(cfg *config.Config, registry *airport.Registry, log logger.Logger) *app.Service {
	client := feed.NewClient(
		feed.WithBaseURL(cfg.FeedBaseURL),
		feed.WithHost(cfg.FeedHost),
		feed.WithAPIKey(cfg.FeedAPIKey),
		feed.WithTimeout(cfg.FeedTimeout()),
		feed.WithRateLimit(cfg.FeedRatePerMinute, cfg.FeedBurst),
		feed.WithLogger(log.Named("feed")),
	)
	store := repository.NewSnapshotStore(
		repository.WithFetchTimeout(cfg.FetchTimeout()),
		repository.WithStaleRetention(cfg.StaleRetention()),
		repository.WithLogger(log.Named("store")),
	)
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithFetcher(client),
		app.WithStore(store),
		app.WithRegistry(registry),
		app.WithDefaultAirport(cfg.DefaultAirport),
		app.WithTTL(cfg.CacheTTL()),
		app.WithServeStale(cfg.ServeStale),
		app.WithFeedWindow(cfg.FeedWindow()),
		app.WithSurgeThresholds(cfg.SurgeModerate, cfg.SurgeHigh),
		app.WithSurgeHorizon(cfg.SurgeHorizonHours),
		app.WithBestHoursHorizon(cfg.BestHoursHorizon()),
	)
}

// newMux registers the API docs and report routes.
func newMux(ctx context.Context, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, api.WithLogger(log)).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc, time.Now())
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes snapshot ages between requests.
func updateServiceMetrics(svc *app.Service, now time.Time) {
	stats := svc.GetStats()
	snapshots, ok := stats["snapshots"].([]map[string]interface{})
	if !ok {
		return
	}
	for _, s := range snapshots {
		key, _ := s["key"].(string)
		fetchedAt, ok := s["fetchedAt"].(time.Time)
		if key == "" || !ok {
			continue
		}
		metrics.UpdateSnapshotAge(key, now.Sub(fetchedAt).Seconds())
	}
}
