package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the curbcast namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "curbcast")
				So(manager.subsystem, ShouldEqual, "demand")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.cacheHits.WithLabelValues("GEG/arrival").Inc()

			Convey("Then the options are reflected in the exposition", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() == "test_sub_cache_hits_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "curbcast")
				So(manager.subsystem, ShouldEqual, "demand")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		key := "TST/arrival"

		Convey("When recording cache activity", func() {
			before := testutil.ToFloat64(globalManager.cacheHits.WithLabelValues(key))
			RecordCacheHit(key)
			RecordCacheHit(key)
			RecordCacheMiss(key)
			RecordCacheCoalesced(key)
			RecordStaleServed(key)
			RecordStaleWriteDropped(key)
			UpdateCacheEntries(4)

			Convey("Then counters advance", func() {
				So(testutil.ToFloat64(globalManager.cacheHits.WithLabelValues(key))-before, ShouldEqual, float64(2))
				So(testutil.ToFloat64(globalManager.cacheEntries), ShouldEqual, float64(4))
			})
		})

		Convey("When recording feed activity", func() {
			before := testutil.ToFloat64(globalManager.filteredByReason.WithLabelValues("cargo"))
			RecordFetch(key, "success", 120)
			RecordFeedRecords("arrival", 10)
			RecordMalformedRecord("arrival")
			RecordRateLimited()
			RecordFiltered("cargo")
			UpdateSnapshotFlights(key, 42)
			UpdateSnapshotAge(key, 30)
			UpdateSurgeLevel("TST", 2)

			Convey("Then values are visible", func() {
				So(testutil.ToFloat64(globalManager.filteredByReason.WithLabelValues("cargo"))-before, ShouldEqual, float64(1))
				So(testutil.ToFloat64(globalManager.snapshotFlights.WithLabelValues(key)), ShouldEqual, float64(42))
				So(testutil.ToFloat64(globalManager.surgeLevel.WithLabelValues("TST")), ShouldEqual, float64(2))
			})
		})

		Convey("When recording HTTP, error and system metrics", func() {
			So(func() {
				RecordHTTPRequest("/flights", "GET", "200")
				RecordHTTPRequestDuration("/flights", "GET", "200", 12.5)
				RecordErrorByComponent("repository", "fetch")
				RecordErrorByEndpoint("/flights", "GET", "unavailable")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryExposition(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		RecordCacheHit("EXP/arrival")

		Convey("Then the custom registry exposes them without Go runtime collectors", func() {
			So(GetRegistry(), ShouldNotBeNil)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			for _, mf := range families {
				names = append(names, mf.GetName())
			}
			joined := strings.Join(names, ",")
			So(joined, ShouldContainSubstring, "curbcast_demand_cache_hits_total")
			So(joined, ShouldNotContainSubstring, "go_goroutines")
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		key := "CON/departure"
		before := testutil.ToFloat64(globalManager.cacheMisses.WithLabelValues(key))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					RecordCacheMiss(key)
				}
			}()
		}
		wg.Wait()

		Convey("Then no increments are lost", func() {
			So(testutil.ToFloat64(globalManager.cacheMisses.WithLabelValues(key))-before, ShouldEqual, float64(1000))
		})
	})
}
