package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/curbcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseStatus(t *testing.T) {
	Convey("Given feed status strings", t, func() {
		cases := map[string]model.Status{
			"Expected":          model.StatusScheduled,
			"scheduled":         model.StatusScheduled,
			"EnRoute":           model.StatusScheduled,
			"Delayed":           model.StatusDelayed,
			"Cancelled":         model.StatusCancelled,
			"Canceled":          model.StatusCancelled,
			"CanceledUncertain": model.StatusCancelled,
			"Diverted":          model.StatusCancelled,
			"Arrived":           model.StatusLanded,
			"Landed":            model.StatusLanded,
			"":                  model.StatusUnknown,
			"Holding pattern":   model.StatusUnknown,
		}

		Convey("Then each maps to its normalized status", func() {
			for in, want := range cases {
				So(model.ParseStatus(in), ShouldEqual, want)
			}
		})

		Convey("And only delayed and cancelled are disrupted", func() {
			So(model.StatusDelayed.Disrupted(), ShouldBeTrue)
			So(model.StatusCancelled.Disrupted(), ShouldBeTrue)
			So(model.StatusScheduled.Disrupted(), ShouldBeFalse)
			So(model.StatusLanded.Disrupted(), ShouldBeFalse)
			So(model.StatusUnknown.Disrupted(), ShouldBeFalse)
		})
	})
}

func TestParseDirection(t *testing.T) {
	Convey("Given direction strings", t, func() {
		Convey("When parsing known values", func() {
			d1, err1 := model.ParseDirection("Arrivals")
			d2, err2 := model.ParseDirection("departure")
			d3, err3 := model.ParseDirection("")

			Convey("Then they resolve", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(d1, ShouldEqual, model.Arrival)
				So(d2, ShouldEqual, model.Departure)
				So(d3, ShouldEqual, model.Arrival)
			})
		})

		Convey("When parsing garbage", func() {
			_, err := model.ParseDirection("sideways")

			Convey("Then it returns ErrInvalidDirection", func() {
				So(errors.Is(err, model.ErrInvalidDirection), ShouldBeTrue)
			})
		})
	})
}

func TestZone(t *testing.T) {
	Convey("Given zone table values", t, func() {
		ab, err := model.ParseZone("A/B")
		So(err, ShouldBeNil)
		So(ab, ShouldEqual, model.ZoneAB)

		c, err := model.ParseZone(" c ")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, model.ZoneC)

		_, err = model.ParseZone("D")
		So(err, ShouldNotBeNil)

		Convey("Then unknown renders as check screen", func() {
			So(model.ZoneUnknown.Label(), ShouldEqual, "check screen")
			So(model.ZoneC.Label(), ShouldEqual, "Zone C")
		})
	})
}

func TestFlightJSON(t *testing.T) {
	Convey("Given a normalized arrival", t, func() {
		at := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
		ready := at.Add(20 * time.Minute)
		f := model.Flight{
			Airline:   "AS",
			Number:    "AS 2345",
			Direction: model.Arrival,
			Scheduled: at,
			Status:    model.StatusDelayed,
			Zone:      model.ZoneC,
			ReadyAt:   &ready,
		}

		Convey("When encoding it", func() {
			b, err := json.Marshal(f)
			So(err, ShouldBeNil)

			var got map[string]any
			So(json.Unmarshal(b, &got), ShouldBeNil)

			Convey("Then enums render by name", func() {
				So(got["direction"], ShouldEqual, "arrival")
				So(got["status"], ShouldEqual, "Delayed")
				So(got["zone"], ShouldEqual, "C")
				So(got["ready_at"], ShouldNotBeNil)
			})
		})
	})
}
