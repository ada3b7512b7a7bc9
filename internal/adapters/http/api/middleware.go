// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/curbcast/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
// Failed requests are labelled with the error code of the reply and the
// report operation that produced it.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			errorType, component := wrapped.failureLabels()
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
			metrics.RecordErrorByComponent(component, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code and
// the classified failure, if any.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	code       string
	op         string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// failureLabels returns the error type and component for a failed request.
// Replies written without writeError fall back to the status class.
func (rw *responseWriter) failureLabels() (string, string) {
	errorType := rw.code
	if errorType == "" {
		errorType = "client_error"
		if rw.statusCode >= http.StatusInternalServerError {
			errorType = "server_error"
		}
	}
	component := rw.op
	if component == "" {
		component = "http"
	}
	return errorType, component
}

// noteFailure records the reply's error code, and the operation when known,
// on a metrics-wrapped writer. Other writers are left alone.
func noteFailure(w http.ResponseWriter, op, code string) {
	rw, ok := w.(*responseWriter)
	if !ok {
		return
	}
	rw.code = code
	if op != "" {
		rw.op = op
	}
}
