package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/curbcast/internal/adapters/feed"
	"github.com/okian/curbcast/internal/adapters/repository"
	"github.com/okian/curbcast/internal/domain/model"
	service "github.com/okian/curbcast/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

const fidsPage = `{
  "arrivals": [
    {
      "number": "AS 2345", "status": "Expected", "codeshareStatus": "IsOperator",
      "movement": {"airport": {"iata": "SEA"}, "scheduledTime": {"utc": "2025-07-01 21:00Z", "local": "2025-07-01 14:00-07:00"}},
      "airline": {"name": "Alaska", "iata": "AS"}, "aircraft": {"reg": "N614AS"}
    },
    {
      "number": "AA 7001", "status": "Expected", "codeshareStatus": "IsCodeshared",
      "movement": {"airport": {"iata": "SEA"}, "scheduledTime": {"utc": "2025-07-01 21:00Z", "local": "2025-07-01 14:00-07:00"}},
      "airline": {"name": "American", "iata": "AA"}
    },
    {
      "number": "WN 1200", "status": "Delayed",
      "movement": {"airport": {"iata": "OAK"}, "scheduledTime": "2025-07-01T14:10", "revisedTime": "2025-07-01T14:18"},
      "airline": {"name": "Southwest", "iata": "WN"}
    },
    {
      "number": "DL 88", "status": "Scheduled",
      "movement": {"airport": {"iata": "SLC"}, "scheduledTime": {"local": "2025-07-01 14:20-07:00"}},
      "airline": {"name": "Delta", "iata": "DL"}
    },
    {
      "number": "5X 410", "status": "Scheduled", "isCargo": true,
      "movement": {"airport": {"iata": "SDF"}, "scheduledTime": {"local": "2025-07-01 14:05-07:00"}},
      "airline": {"name": "UPS", "iata": "5X"}
    },
    {"number": "N123", "movement": {"scheduledTime": {"local": "2025-07-01 14:06-07:00"}}},
    {"number": 42}
  ],
  "departures": []
}`

func TestServiceIntegration(t *testing.T) {
	Convey("Given the service wired to the FIDS client against a test server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(fidsPage))
		}))
		defer srv.Close()

		c := &clock{now: time.Date(2025, 7, 1, 13, 50, 0, 0, spokane)}
		client := feed.NewClient(feed.WithBaseURL(srv.URL), feed.WithAPIKey("test"), feed.WithRateLimit(0, 0))
		svc := service.New(
			service.WithFetcher(client),
			service.WithClock(c.Now),
			service.WithStore(repository.NewSnapshotStore(repository.WithClock(c.Now))),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When listing arrivals", func() {
			view, err := svc.Flights(ctx, "GEG", model.Arrival)

			Convey("Then codeshares collapse to the operator and non-passenger rows vanish", func() {
				So(err, ShouldBeNil)
				So(numbers(view.Flights), ShouldResemble, []string{"AS 2345", "WN 1200", "DL 88"})
			})

			Convey("Then naive revised times are read as Spokane wall clock", func() {
				wn := view.Flights[1]
				So(wn.Scheduled.Hour(), ShouldEqual, 14)
				So(wn.Scheduled.Minute(), ShouldEqual, 18)
				So(wn.Status, ShouldEqual, model.StatusDelayed)
				So(wn.Zone, ShouldEqual, model.ZoneAB)
			})
		})

		Convey("When detecting clusters", func() {
			view, err := svc.Clusters(ctx, "GEG")

			Convey("Then the three passenger arrivals form one cluster", func() {
				So(err, ShouldBeNil)
				So(len(view.Clusters), ShouldEqual, 1)
				So(view.Clusters[0].Size(), ShouldEqual, 3)
			})
		})
	})
}
