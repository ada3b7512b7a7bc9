package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/curbcast/internal/adapters/repository"
	"github.com/okian/curbcast/pkg/logger"
	"github.com/okian/curbcast/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums the series of the named family whose labels include want.
func counterValue(suffix string, want map[string]string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), suffix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestMetricsMiddleware_FailureLabels(t *testing.T) {
	Convey("Given a report handler wrapped in the metrics middleware", t, func() {
		fail := func(op string, err error) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				writeFailure(w, r, logger.NewNop(), op, false, err)
			}
		}

		Convey("When the schedule feed is unavailable", func() {
			labels := map[string]string{"component": "api.surge", "error_type": "data_unavailable"}
			before := counterValue("errors_by_component_total", labels)

			h := MetricsMiddleware(fail("api.surge", Wrap("api.surge", repository.ErrFetch)), "surge")
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/surge", http.NoBody))

			Convey("Then the error is counted under the report operation and reply code", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(counterValue("errors_by_component_total", labels), ShouldEqual, before+1)
				So(counterValue("errors_by_endpoint_total", map[string]string{
					"endpoint": "surge", "method": http.MethodGet, "error_type": "data_unavailable",
				}), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When the query is invalid and text was requested", func() {
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
			r := httptest.NewRequest(http.MethodGet, "/flights?format=text", http.NoBody)
			writeFailure(rw, r, logger.NewNop(), "api.flights", true, NewKind("api.flights", ErrBadRequest))

			Convey("Then the labels still carry the classified code", func() {
				errorType, component := rw.failureLabels()
				So(rw.statusCode, ShouldEqual, http.StatusBadRequest)
				So(errorType, ShouldEqual, "bad_request")
				So(component, ShouldEqual, "api.flights")
			})
		})

		Convey("When a reply bypasses the error helpers", func() {
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
			rw.WriteHeader(http.StatusBadGateway)

			Convey("Then the status class is used", func() {
				errorType, component := rw.failureLabels()
				So(errorType, ShouldEqual, "server_error")
				So(component, ShouldEqual, "http")
			})
		})

		Convey("When stats is called with the wrong method", func() {
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
			NewStatsHandler(nil).HandleStats(rw, httptest.NewRequest(http.MethodPost, "/stats", http.NoBody))

			Convey("Then the stats operation and method code are recorded", func() {
				errorType, component := rw.failureLabels()
				So(rw.statusCode, ShouldEqual, http.StatusMethodNotAllowed)
				So(errorType, ShouldEqual, "method_not_allowed")
				So(component, ShouldEqual, "api.stats")
			})
		})
	})
}
