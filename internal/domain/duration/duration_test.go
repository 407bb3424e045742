package duration_test

import (
	"errors"
	"testing"

	"github.com/okian/ekiden/internal/domain/duration"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given race time strings", t, func() {
		Convey("When the string has hours, minutes and seconds", func() {
			ms, err := duration.Parse("01:23:45")

			Convey("Then it converts to milliseconds", func() {
				So(err, ShouldBeNil)
				So(ms, ShouldEqual, 5025000)
			})
		})

		Convey("When the string carries centiseconds", func() {
			ms, err := duration.Parse("00:05:09.50")

			Convey("Then the fraction counts as centiseconds", func() {
				So(err, ShouldBeNil)
				So(ms, ShouldEqual, 309500)
			})
		})

		Convey("When the fraction has one, three or four digits", func() {
			one, err1 := duration.Parse("0:00:01.5")
			three, err3 := duration.Parse("0:00:01.123")
			four, err4 := duration.Parse("0:00:01.1234")

			Convey("Then the digits are multiplied by ten as written", func() {
				So(err1, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(err4, ShouldBeNil)
				So(one, ShouldEqual, 1050)
				So(three, ShouldEqual, 2230)
				So(four, ShouldEqual, 13340)
			})
		})

		Convey("When hours use a single digit", func() {
			ms, err := duration.Parse("3:02:01")

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
				So(ms, ShouldEqual, 3*3600000+2*60000+1000)
			})
		})

		Convey("When the string breaks the grammar", func() {
			for _, bad := range []string{"1:60:00", "1:23:5", "", "abc", "123:00:00", "1:00:00.", "1:00:00.12345", " 1:00:00", "1:00:60"} {
				_, err := duration.Parse(bad)

				So(err, ShouldNotBeNil)
				So(errors.Is(err, duration.ErrFormat), ShouldBeTrue)

				var fe *duration.FormatError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Input, ShouldEqual, bad)
			}
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Given millisecond counts", t, func() {
		Convey("Then full form always shows unpadded hours", func() {
			So(duration.Format(5025000, duration.Full), ShouldEqual, "1:23:45")
			So(duration.FormatFull(309500), ShouldEqual, "0:05:09")
			So(duration.FormatFull(36*3600000), ShouldEqual, "36:00:00")
		})

		Convey("Then compact form omits zero hours", func() {
			So(duration.Format(309500, duration.Compact), ShouldEqual, "05:09")
			So(duration.FormatCompact(5025000), ShouldEqual, "1:23:45")
			So(duration.FormatCompact(0), ShouldEqual, "00:00")
		})

		Convey("Then negative input is clamped", func() {
			So(duration.FormatFull(-5), ShouldEqual, "0:00:00")
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given valid time strings", t, func() {
		Convey("When no fraction is supplied", func() {
			ms, err := duration.Parse("2:03:04")

			Convey("Then full form reproduces the input", func() {
				So(err, ShouldBeNil)
				So(duration.FormatFull(ms), ShouldEqual, "2:03:04")
			})
		})

		Convey("When a fraction is supplied", func() {
			ms, err := duration.Parse("2:03:04.99")

			Convey("Then the fraction is dropped on display", func() {
				So(err, ShouldBeNil)
				So(duration.FormatFull(ms), ShouldEqual, "2:03:04")
				So(duration.FormatFull(ms), ShouldNotEqual, "2:03:04.99")
			})
		})
	})
}
