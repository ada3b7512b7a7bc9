package zone_test

import (
	"testing"

	"github.com/okian/curbcast/internal/domain/model"
	"github.com/okian/curbcast/internal/domain/zone"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver(t *testing.T) {
	Convey("Given a resolver over a small table", t, func() {
		r := zone.NewResolver(zone.Table{
			"AS": model.ZoneC,
			"wn": model.ZoneAB,
		})

		Convey("When resolving a mapped code", func() {
			Convey("Then AS goes to Zone C", func() {
				So(r.Resolve("AS"), ShouldEqual, model.ZoneC)
			})

			Convey("And lookups ignore case and whitespace", func() {
				So(r.Resolve(" as "), ShouldEqual, model.ZoneC)
				So(r.Resolve("WN"), ShouldEqual, model.ZoneAB)
			})
		})

		Convey("When resolving an unmapped code", func() {
			Convey("Then it is Unknown, not an error", func() {
				So(r.Resolve("XX"), ShouldEqual, model.ZoneUnknown)
				So(r.Resolve(""), ShouldEqual, model.ZoneUnknown)
			})
		})
	})

	Convey("Given a table owned by the caller", t, func() {
		table := zone.Table{"DL": model.ZoneAB}
		r := zone.NewResolver(table)
		table["DL"] = model.ZoneC

		Convey("Then mutating it does not affect the resolver", func() {
			So(r.Resolve("DL"), ShouldEqual, model.ZoneAB)
			So(r.Len(), ShouldEqual, 1)
		})
	})
}

func TestParseTable(t *testing.T) {
	Convey("Given config-style zone values", t, func() {
		Convey("When all values are valid", func() {
			table, err := zone.ParseTable(map[string]string{"as": "C", "DL": "A/B"})

			Convey("Then codes are normalized", func() {
				So(err, ShouldBeNil)
				So(table["AS"], ShouldEqual, model.ZoneC)
				So(table["DL"], ShouldEqual, model.ZoneAB)
			})
		})

		Convey("When a value is not a zone", func() {
			_, err := zone.ParseTable(map[string]string{"AS": "Q"})

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
