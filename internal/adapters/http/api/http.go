// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/curbcast/internal/adapters/repository"
	service "github.com/okian/curbcast/internal/app"
	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/pkg/logger"
)

// Dependencies required by HTTP handlers. Each method backs one report
// command; an empty airport code selects DefaultAirport.
type Dependencies interface {
	StatsProvider

	DefaultAirport() string

	Flights(ctx context.Context, code string, dir model.Direction) (service.FlightsView, error)
	Delays(ctx context.Context, code string, dir model.Direction) (service.FlightsView, error)
	Clusters(ctx context.Context, code string) (service.ClustersView, error)
	BestHours(ctx context.Context, code string, dir model.Direction) (service.BestHoursView, error)
	SurgeScore(ctx context.Context, code string) (service.SurgeView, error)
	HourlySummary(ctx context.Context, code string, dir model.Direction) (service.SummaryView, error)
	Refresh(ctx context.Context, code string, dir model.Direction) (service.FlightsView, error)
}

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	reportHandler *ReportHandler
	logger        logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.reportHandler = NewReportHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/flights", MetricsMiddleware(s.reportHandler.HandleFlights, "flights"))
	mux.HandleFunc("/delays", MetricsMiddleware(s.reportHandler.HandleDelays, "delays"))
	mux.HandleFunc("/clusters", MetricsMiddleware(s.reportHandler.HandleClusters, "clusters"))
	mux.HandleFunc("/best-hours", MetricsMiddleware(s.reportHandler.HandleBestHours, "best_hours"))
	mux.HandleFunc("/surge", MetricsMiddleware(s.reportHandler.HandleSurge, "surge"))
	mux.HandleFunc("/summary", MetricsMiddleware(s.reportHandler.HandleSummary, "summary"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.reportHandler.HandleRefresh, "refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	noteFailure(w, "", code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps a service error onto an HTTP status and a stable code.
// Fetch failures are reported without upstream detail.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed", err
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidDirection):
		return http.StatusBadRequest, "bad_request", err
	case errors.Is(err, airport.ErrUnknownAirport):
		return http.StatusNotFound, "unknown_airport", err
	case errors.Is(err, repository.ErrFetch), errors.Is(err, service.ErrNoFetcher):
		return http.StatusServiceUnavailable, "data_unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", err
	}
}

// writeFailure reports err in the caller's requested format.
func writeFailure(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, asText bool, err error) {
	status, code, public := classify(err)
	noteFailure(w, op, code)
	if status >= http.StatusInternalServerError {
		log.Warn(r.Context(), "report request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", allowedMethod(r.URL.Path))
	}
	if asText {
		writeText(w, status, textError(public)+"\n")
		return
	}
	writeError(w, status, code, public)
}

func allowedMethod(path string) string {
	if strings.HasSuffix(path, "/refresh") {
		return http.MethodPost
	}
	return http.MethodGet
}
