package view_test

import (
	"errors"
	"testing"

	"github.com/okian/ekiden/internal/domain/distance"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

func dates(rs []model.RaceResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.EventDate
	}
	return out
}

func ids(rs []model.RaceResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestSort(t *testing.T) {
	Convey("Given results with a missing date", t, func() {
		in := []model.RaceResult{
			{ID: "a", EventDate: "2024-01-01"},
			{ID: "b", EventDate: "2023-01-01"},
			{ID: "c"},
		}

		Convey("When sorting by date ascending", func() {
			out := view.Sort(in, view.SortDate, false)

			Convey("Then the missing value is last", func() {
				So(dates(out), ShouldResemble, []string{"2023-01-01", "2024-01-01", ""})
			})

			Convey("And the input is untouched", func() {
				So(ids(in), ShouldResemble, []string{"a", "b", "c"})
			})
		})

		Convey("When sorting by date descending", func() {
			out := view.Sort(in, view.SortDate, true)

			Convey("Then the missing value is still last", func() {
				So(dates(out), ShouldResemble, []string{"2024-01-01", "2023-01-01", ""})
			})
		})
	})

	Convey("Given results with equal keys", t, func() {
		in := []model.RaceResult{
			{ID: "1", DurationMs: 500, RaceName: "x"},
			{ID: "2", DurationMs: 300, RaceName: "y"},
			{ID: "3", DurationMs: 500, RaceName: "z"},
			{ID: "4", DurationMs: 300, RaceName: "w"},
		}

		Convey("When sorting by time in either direction", func() {
			asc := view.Sort(in, view.SortTime, false)
			desc := view.Sort(in, view.SortTime, true)

			Convey("Then ties keep their input order", func() {
				So(ids(asc), ShouldResemble, []string{"2", "4", "1", "3"})
				So(ids(desc), ShouldResemble, []string{"1", "3", "2", "4"})
			})
		})

		Convey("When sorting by distance with unknown distances", func() {
			rs := []model.RaceResult{{ID: "n", DistanceKm: 0}, {ID: "m", DistanceKm: 42.195}, {ID: "k", DistanceKm: 5}}
			out := view.Sort(rs, view.SortDistance, true)

			Convey("Then unknown distance goes last", func() {
				So(ids(out), ShouldResemble, []string{"m", "k", "n"})
			})
		})
	})
}

func TestToggle(t *testing.T) {
	Convey("Given the default view", t, func() {
		s := view.DefaultSpec()

		Convey("Then it sorts by date descending", func() {
			So(s.SortKey, ShouldEqual, view.SortDate)
			So(s.Desc, ShouldBeTrue)
		})

		Convey("When toggling the active key", func() {
			next := s.Toggle(view.SortDate)

			Convey("Then only the copy flips direction", func() {
				So(next.Desc, ShouldBeFalse)
				So(s.Desc, ShouldBeTrue)
			})
		})

		Convey("When toggling a new key", func() {
			next := s.Toggle(view.SortTime)

			Convey("Then the direction resets to ascending", func() {
				So(next.SortKey, ShouldEqual, view.SortTime)
				So(next.Desc, ShouldBeFalse)
				So(next.Toggle(view.SortTime).Desc, ShouldBeTrue)
			})
		})
	})
}

func TestApply(t *testing.T) {
	records := []model.RaceResult{
		{ID: "r1", OwnerID: "m1", DisplayName: "Aiko", Gender: model.GenderFemale, DurationMs: 1_500_000, DistanceKm: 5, RaceName: "Park Run", Category: model.CategoryRoad, EventDate: "2024-03-01"},
		{ID: "r2", OwnerID: "m1", DisplayName: "Aiko", Gender: model.GenderFemale, DurationMs: 1_400_000, DistanceKm: 5.0002, RaceName: "Harbour 5", Category: model.CategoryRoad, EventDate: "2023-06-10"},
		{ID: "r3", OwnerID: "m2", DisplayName: "Ben", Gender: model.GenderMale, DurationMs: 1_300_000, DistanceKm: 5, RaceName: "Park Run", Category: model.CategoryTrail, EventDate: "2024-05-05"},
		{ID: "r4", OwnerID: "m2", DisplayName: "Ben", Gender: model.GenderMale, DurationMs: 5_000_000, DistanceKm: 15, RaceName: "Hill Climb", Category: model.CategoryTrail, EventDate: "2024-07-07"},
		{ID: "r5", OwnerID: "m3", DisplayName: "Chie", DurationMs: 40_000_000, DistanceKm: 150, RaceName: "Mountain Ultra", Category: model.CategoryTrail, EventDate: "2022-09-09"},
	}

	Convey("Given a fetched result set", t, func() {
		Convey("When filtering the 5k bucket in all mode", func() {
			out := view.Apply(records, view.DefaultSpec().WithBucket(distance.FiveK).WithSort(view.SortTime, false))

			Convey("Then only 5k rows remain, fastest first", func() {
				So(ids(out), ShouldResemble, []string{"r3", "r2", "r1"})
			})
		})

		Convey("When asking for each member's best 5k", func() {
			out := view.Apply(records, view.DefaultSpec().WithBucket(distance.FiveK).WithMode(view.ModeBest).WithSort(view.SortTime, false))

			Convey("Then one row per member remains", func() {
				So(ids(out), ShouldResemble, []string{"r3", "r2"})
			})
		})

		Convey("When filtering the residual buckets", func() {
			under := view.Apply(records, view.DefaultSpec().WithBucket(distance.OtherUnder100))
			over := view.Apply(records, view.DefaultSpec().WithBucket(distance.OtherOver100))

			Convey("Then 15 km is under and 150 km is over", func() {
				So(ids(under), ShouldResemble, []string{"r4"})
				So(ids(over), ShouldResemble, []string{"r5"})
			})
		})

		Convey("When filtering by category, gender and text", func() {
			spec := view.DefaultSpec().
				WithCategory(model.CategoryTrail).
				WithGender(model.GenderMale).
				WithQueries("ben", "park")
			out := view.Apply(records, spec)

			Convey("Then every filter is honoured case-insensitively", func() {
				So(ids(out), ShouldResemble, []string{"r3"})
			})
		})

		Convey("When filtering by year", func() {
			out := view.Apply(records, view.DefaultSpec().WithYear(2024))

			Convey("Then bounds are inclusive and newest comes first", func() {
				So(ids(out), ShouldResemble, []string{"r4", "r3", "r1"})
			})
		})

		Convey("When limiting rows", func() {
			out := view.Apply(records, view.DefaultSpec().WithLimit(2))

			Convey("Then only the first rows are returned", func() {
				So(out, ShouldHaveLength, 2)
			})
		})

		Convey("When applying a spec to its own output", func() {
			spec := view.DefaultSpec().WithBucket(distance.FiveK).WithMode(view.ModeBest).WithQueries("", "run")
			once := view.Apply(records, spec)
			twice := view.Apply(once, spec)

			Convey("Then the result is unchanged", func() {
				So(ids(twice), ShouldResemble, ids(once))
			})
		})
	})
}

func TestSourceTableComplete(t *testing.T) {
	Convey("Given every bucket and mode", t, func() {
		seen := map[view.Source]bool{}
		for _, b := range distance.Buckets() {
			for _, m := range view.Modes() {
				src, err := view.SourceFor(b, m)
				So(err, ShouldBeNil)
				So(src, ShouldNotBeEmpty)
				So(seen[src], ShouldBeFalse)
				seen[src] = true
			}
		}

		Convey("Then Sources lists the same table", func() {
			So(view.Sources(), ShouldHaveLength, len(seen))
			for _, d := range view.Sources() {
				So(seen[d.Name], ShouldBeTrue)
			}
		})

		Convey("Then known pairs map to their views", func() {
			src, _ := view.SourceFor(distance.Half, view.ModeBest)
			So(src, ShouldEqual, view.Source("public_half_best"))
			src, _ = view.DefaultSpec().Source()
			So(src, ShouldEqual, view.Source("public_record"))
		})

		Convey("Then out-of-range keys are rejected", func() {
			_, err := view.SourceFor(distance.Count, view.ModeAll)
			So(errors.Is(err, view.ErrNoSource), ShouldBeTrue)
		})
	})
}

func TestParsing(t *testing.T) {
	Convey("Given query values", t, func() {
		k, err := view.ParseSortKey("time")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, view.SortTime)

		_, err = view.ParseSortKey("pace")
		So(errors.Is(err, view.ErrUnknownSortKey), ShouldBeTrue)

		m, err := view.ParseMode("BEST")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, view.ModeBest)

		_, err = view.ParseMode("worst")
		So(errors.Is(err, view.ErrUnknownMode), ShouldBeTrue)
	})
}
