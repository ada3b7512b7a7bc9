package api

import (
	"net/http"
	"strings"

	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/pkg/logger"
)

// reportQuery holds the parameters shared by every report endpoint.
type reportQuery struct {
	airport   string
	direction model.Direction
	text      bool
}

// parseQuery reads airport, direction and format from the URL.
func parseQuery(r *http.Request) (reportQuery, error) {
	v := r.URL.Query()
	q := reportQuery{airport: strings.ToUpper(strings.TrimSpace(v.Get("airport")))}
	switch strings.ToLower(v.Get("format")) {
	case "", "json":
	case "text":
		q.text = true
	default:
		return q, ErrBadRequest
	}
	dir, err := model.ParseDirection(v.Get("direction"))
	if err != nil {
		return q, err
	}
	q.direction = dir
	return q, nil
}

// ReportHandler serves the demand report commands.
type ReportHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewReportHandler creates a new report handler. A nil log discards output.
func NewReportHandler(deps Dependencies, log logger.Logger) *ReportHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ReportHandler{deps: deps, logger: log}
}

// begin validates the method and parses the query. It writes the failure
// response itself and returns false when the request cannot proceed.
func (h *ReportHandler) begin(w http.ResponseWriter, r *http.Request, op, method string) (reportQuery, bool) {
	asText := strings.EqualFold(r.URL.Query().Get("format"), "text")
	if r.Method != method {
		writeFailure(w, r, h.logger, op, asText, NewKind(op, ErrMethodNotAllowed))
		return reportQuery{}, false
	}
	q, err := parseQuery(r)
	if err != nil {
		writeFailure(w, r, h.logger, op, asText, WrapKind(op, ErrBadRequest, err))
		return reportQuery{}, false
	}
	return q, true
}

// respond writes v as JSON, or the rendered chat text when requested.
func (h *ReportHandler) respond(w http.ResponseWriter, r *http.Request, q reportQuery, op string, v any, err error, render func() string) {
	if err != nil {
		writeFailure(w, r, h.logger, op, q.text, Wrap(op, err))
		return
	}
	if q.text {
		writeText(w, http.StatusOK, render())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleFlights handles GET /flights requests.
func (h *ReportHandler) HandleFlights(w http.ResponseWriter, r *http.Request) {
	const op = "api.flights"
	q, ok := h.begin(w, r, op, http.MethodGet)
	if !ok {
		return
	}
	v, err := h.deps.Flights(r.Context(), q.airport, q.direction)
	h.respond(w, r, q, op, v, err, func() string { return renderFlights(v, "Upcoming") })
}

// HandleDelays handles GET /delays requests.
func (h *ReportHandler) HandleDelays(w http.ResponseWriter, r *http.Request) {
	const op = "api.delays"
	q, ok := h.begin(w, r, op, http.MethodGet)
	if !ok {
		return
	}
	v, err := h.deps.Delays(r.Context(), q.airport, q.direction)
	h.respond(w, r, q, op, v, err, func() string { return renderDelays(v) })
}

// HandleClusters handles GET /clusters requests.
func (h *ReportHandler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	const op = "api.clusters"
	q, ok := h.begin(w, r, op, http.MethodGet)
	if !ok {
		return
	}
	v, err := h.deps.Clusters(r.Context(), q.airport)
	h.respond(w, r, q, op, v, err, func() string { return renderClusters(v) })
}

// HandleBestHours handles GET /best-hours requests.
func (h *ReportHandler) HandleBestHours(w http.ResponseWriter, r *http.Request) {
	const op = "api.best_hours"
	q, ok := h.begin(w, r, op, http.MethodGet)
	if !ok {
		return
	}
	v, err := h.deps.BestHours(r.Context(), q.airport, q.direction)
	h.respond(w, r, q, op, v, err, func() string { return renderBestHours(v) })
}

// HandleSurge handles GET /surge requests.
func (h *ReportHandler) HandleSurge(w http.ResponseWriter, r *http.Request) {
	const op = "api.surge"
	q, ok := h.begin(w, r, op, http.MethodGet)
	if !ok {
		return
	}
	v, err := h.deps.SurgeScore(r.Context(), q.airport)
	h.respond(w, r, q, op, v, err, func() string { return renderSurge(v) })
}

// HandleSummary handles GET /summary requests.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.summary"
	q, ok := h.begin(w, r, op, http.MethodGet)
	if !ok {
		return
	}
	v, err := h.deps.HourlySummary(r.Context(), q.airport, q.direction)
	h.respond(w, r, q, op, v, err, func() string { return renderSummary(v) })
}

// HandleRefresh handles POST /refresh requests.
func (h *ReportHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	q, ok := h.begin(w, r, op, http.MethodPost)
	if !ok {
		return
	}
	v, err := h.deps.Refresh(r.Context(), q.airport, q.direction)
	h.respond(w, r, q, op, v, err, func() string { return renderFlights(v, "Refreshed") })
}
