package airport_test

import (
	"errors"
	"testing"

	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSpokane(t *testing.T) {
	Convey("Given the built-in GEG profile", t, func() {
		p := airport.Spokane()

		Convey("Then it is pinned to Pacific time", func() {
			So(p.Code, ShouldEqual, "GEG")
			So(p.Location.String(), ShouldEqual, "America/Los_Angeles")
		})

		Convey("And Alaska picks up in Zone C", func() {
			So(p.Zones["AS"], ShouldEqual, model.ZoneC)
		})

		Convey("And cargo carriers are excluded", func() {
			So(p.ExcludedCarriers, ShouldContain, "FX")
			So(p.ExcludedCarriers, ShouldContain, "5X")
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given config values for an airport", t, func() {
		Convey("When they are valid", func() {
			p, err := airport.New("sea", "America/Los_Angeles", map[string]string{"AS": "C"}, []string{"FX"})

			Convey("Then a profile is built", func() {
				So(err, ShouldBeNil)
				So(p.Code, ShouldEqual, "SEA")
				So(p.Zones["AS"], ShouldEqual, model.ZoneC)
			})
		})

		Convey("When the timezone is bogus", func() {
			_, err := airport.New("SEA", "Mars/Olympus", nil, nil)

			Convey("Then it fails with ErrInvalidProfile", func() {
				So(errors.Is(err, airport.ErrInvalidProfile), ShouldBeTrue)
			})
		})

		Convey("When a zone value is bogus", func() {
			_, err := airport.New("SEA", "UTC", map[string]string{"AS": "Z"}, nil)

			Convey("Then it fails with ErrInvalidProfile", func() {
				So(errors.Is(err, airport.ErrInvalidProfile), ShouldBeTrue)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry with GEG", t, func() {
		r := airport.NewRegistry(airport.Spokane())

		Convey("When looking up GEG in any case", func() {
			p, err := r.Lookup("geg")

			Convey("Then it is found", func() {
				So(err, ShouldBeNil)
				So(p.Code, ShouldEqual, "GEG")
			})
		})

		Convey("When looking up an unregistered airport", func() {
			_, err := r.Lookup("JFK")

			Convey("Then it returns ErrUnknownAirport", func() {
				So(errors.Is(err, airport.ErrUnknownAirport), ShouldBeTrue)
			})
		})

		Convey("Then Codes lists it", func() {
			So(r.Codes(), ShouldResemble, []string{"GEG"})
		})
	})
}
