package distance_test

import (
	"errors"
	"testing"

	"github.com/okian/ekiden/internal/domain/distance"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given race distances", t, func() {
		Convey("Then values within tolerance map to the named bucket", func() {
			So(distance.Classify(21.0974), ShouldEqual, distance.Half)
			So(distance.Classify(42.195), ShouldEqual, distance.Full)
			So(distance.Classify(5.0005), ShouldEqual, distance.FiveK)
			So(distance.Classify(10), ShouldEqual, distance.TenK)
			So(distance.Classify(100), ShouldEqual, distance.HundredK)
		})

		Convey("Then other values fall into a residual bucket", func() {
			So(distance.Classify(15), ShouldEqual, distance.OtherUnder100)
			So(distance.Classify(21.2), ShouldEqual, distance.OtherUnder100)
			So(distance.Classify(150), ShouldEqual, distance.OtherOver100)
		})
	})
}

func TestMatches(t *testing.T) {
	Convey("Given the residual buckets", t, func() {
		Convey("When the distance is 15 km", func() {
			Convey("Then only other-under-100 and all include it", func() {
				So(distance.OtherUnder100.Matches(15), ShouldBeTrue)
				So(distance.OtherOver100.Matches(15), ShouldBeFalse)
				So(distance.All.Matches(15), ShouldBeTrue)
			})
		})

		Convey("When the distance is 150 km", func() {
			Convey("Then it is over 100, not under", func() {
				So(distance.OtherUnder100.Matches(150), ShouldBeFalse)
				So(distance.OtherOver100.Matches(150), ShouldBeTrue)
			})
		})

		Convey("When the distance is a named target", func() {
			Convey("Then other-under-100 excludes it", func() {
				So(distance.OtherUnder100.Matches(21.0975), ShouldBeFalse)
				So(distance.OtherUnder100.Matches(5), ShouldBeFalse)
				So(distance.Half.Matches(21.0976), ShouldBeTrue)
				So(distance.Half.Matches(21.1), ShouldBeFalse)
			})
		})

		Convey("When the distance is exactly 100 km", func() {
			Convey("Then neither residual bucket holds it", func() {
				So(distance.OtherUnder100.Matches(100), ShouldBeFalse)
				So(distance.OtherOver100.Matches(100), ShouldBeFalse)
				So(distance.HundredK.Matches(100), ShouldBeTrue)
			})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given bucket query values", t, func() {
		Convey("Then every bucket round-trips through its name", func() {
			for _, b := range distance.Buckets() {
				got, err := distance.Parse(b.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, b)
				So(b.Label(), ShouldNotBeEmpty)
			}
		})

		Convey("Then numeric and legacy forms are accepted", func() {
			b, err := distance.Parse("21.0975")
			So(err, ShouldBeNil)
			So(b, ShouldEqual, distance.Half)

			b, err = distance.Parse("10km")
			So(err, ShouldBeNil)
			So(b, ShouldEqual, distance.TenK)

			b, err = distance.Parse("")
			So(err, ShouldBeNil)
			So(b, ShouldEqual, distance.All)
		})

		Convey("Then unknown values are rejected", func() {
			_, err := distance.Parse("ultra")
			So(errors.Is(err, distance.ErrUnknownBucket), ShouldBeTrue)
		})
	})
}
