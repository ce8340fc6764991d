package report_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/report"
)

func at(hour int) time.Time {
	return time.Date(2024, 4, 1, hour, 30, 0, 0, time.UTC)
}

func TestFrequency(t *testing.T) {
	Convey("Given a frequency", t, func() {
		var f report.Frequency

		Convey("When empty", func() {
			_, ok := f.Top()
			So(ok, ShouldBeFalse)
			So(f.Total(), ShouldEqual, 0)
			So(f.Entries(), ShouldBeEmpty)
		})

		Convey("When labels tie", func() {
			for _, l := range []string{"b", "a", "a", "b", "c"} {
				f.Add(l)
			}

			Convey("Then the first seen label wins", func() {
				top, ok := f.Top()
				So(ok, ShouldBeTrue)
				So(top, ShouldResemble, report.Count{Label: "b", Count: 2})
			})

			Convey("Then entries keep first-seen order", func() {
				So(f.Entries(), ShouldResemble, []report.Count{{Label: "b", Count: 2}, {Label: "a", Count: 2}, {Label: "c", Count: 1}})
				So(f.Total(), ShouldEqual, 5)
				So(f.Len(), ShouldEqual, 3)
				So(f.Get("a"), ShouldEqual, 2)
			})

			Convey("Then JSON is an ordered list", func() {
				b, err := json.Marshal(f)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `[{"label":"b","count":2},{"label":"a","count":2},{"label":"c","count":1}]`)
			})
		})
	})
}

func TestBucket(t *testing.T) {
	Convey("Given hours around the bucket boundaries", t, func() {
		So(report.Bucket(at(0), time.UTC), ShouldEqual, report.BucketLateNight)
		So(report.Bucket(at(5), time.UTC), ShouldEqual, report.BucketLateNight)
		So(report.Bucket(at(6), time.UTC), ShouldEqual, report.BucketMorning)
		So(report.Bucket(at(12), time.UTC), ShouldEqual, report.BucketAfternoon)
		So(report.Bucket(at(18), time.UTC), ShouldEqual, report.BucketEvening)
		So(report.Bucket(at(23), time.UTC), ShouldEqual, report.BucketEvening)

		Convey("Then buckets follow the configured zone", func() {
			jst := time.FixedZone("JST", 9*60*60)
			So(report.Bucket(at(0), jst), ShouldEqual, report.BucketMorning)
		})

		Convey("Then an unknown zone falls back to UTC+9", func() {
			loc := report.LoadLocation("Nowhere/Invalid")
			_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
			So(offset, ShouldEqual, 9*60*60)
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given events from two users and an unmapped actor", t, func() {
		users := []model.User{
			{ID: "u1", Email: "s001@example.com"},
			{ID: "u2", Email: "s002@example.com"},
		}
		events := []model.Interaction{
			{Kind: model.EventViewStart, ActorID: "u1", ViewSeconds: 30, Timestamp: at(9)},
			{Kind: model.EventViewStart, ActorID: "u2", ViewSeconds: 10, Timestamp: at(13)},
			{Kind: model.EventViewStart, ActorID: "u2", ViewSeconds: 20, Timestamp: at(14)},
			{Kind: model.EventColumnSelection, ActorID: "u1", Columns: []string{model.ColSalary, model.ColHolidays}, Timestamp: at(9)},
			{Kind: model.EventColumnSelection, ActorID: "u2", Columns: []string{model.ColSalary}, Timestamp: at(13)},
			{Kind: model.EventSortRequest, ActorID: "u1", SortColumn: model.ColSalary, SortDirection: model.Descending, Timestamp: at(9)},
			{Kind: model.EventSortRequest, ActorID: "ghost", ShortID: "s999", SortColumn: model.ColSalary, SortDirection: model.Ascending, Timestamp: at(20)},
			{Kind: model.EventFilterToggle, ActorID: "ghost", FilterType: "hideUnknownSalary", FilterValue: true, Timestamp: at(2)},
		}
		now := at(23)
		r := report.New(report.WithTopN(1)).Build(events, users, now)

		Convey("Then totals match the input", func() {
			So(r.TotalEvents, ShouldEqual, len(events))
			So(r.ByKind.Total(), ShouldEqual, len(events))
			So(r.ByStudent.Total(), ShouldEqual, len(events))
			So(r.ByTimeOfDay.Total(), ShouldEqual, len(events))
			So(r.GeneratedAt, ShouldEqual, now)
		})

		Convey("Then kinds and buckets are counted", func() {
			So(r.ByKind.Get(string(model.EventViewStart)), ShouldEqual, 3)
			So(r.ByTimeOfDay.Entries()[0], ShouldResemble, report.Count{Label: report.BucketLateNight, Count: 1})
			So(r.ByTimeOfDay.Get(report.BucketAfternoon), ShouldEqual, 3)
		})

		Convey("Then actors resolve through users then the logged short id", func() {
			So(r.ByStudent.Get("s001"), ShouldEqual, 3)
			So(r.ByStudent.Get("s002"), ShouldEqual, 3)
			So(r.ByStudent.Get("s999"), ShouldEqual, 1)
			So(r.ByStudent.Get(report.UnknownStudent), ShouldEqual, 1)
		})

		Convey("Then view stats are computed", func() {
			So(r.UniqueStudents, ShouldEqual, 2)
			So(r.AverageViewSeconds, ShouldEqual, 20)
			So(len(r.TopStudents), ShouldEqual, 1)
			So(r.TopStudents[0].StudentID, ShouldEqual, "s002")
			So(r.TopStudents[0].TotalSeconds, ShouldEqual, 30)
			So(r.TopStudents[0].AverageSeconds, ShouldEqual, 15)
			So(r.TopStudents[0].LastActive, ShouldEqual, at(14))
		})

		Convey("Then column, sort and filter usage is counted", func() {
			So(r.Columns.Get(model.ColSalary), ShouldEqual, 2)
			So(r.ColumnsByStudent["s001"].Get(model.ColHolidays), ShouldEqual, 1)
			So(r.Sorts.Get("給与 (降順)"), ShouldEqual, 1)
			So(r.Sorts.Get("給与 (昇順)"), ShouldEqual, 1)
			So(r.SortsByStudent["s999"].Get(model.ColSalary), ShouldEqual, 1)
			So(r.FiltersByStudent[report.UnknownStudent].Get("hideUnknownSalary"), ShouldEqual, 1)
		})

		Convey("Then most-frequent values use first-seen tie-break", func() {
			So(r.MostActiveStudent.Label, ShouldEqual, "s001")
			So(r.MostSelectedColumn.Label, ShouldEqual, model.ColSalary)
			So(r.MostUsedSort.Label, ShouldEqual, "給与 (降順)")
			So(r.MostUsedFilter.Label, ShouldEqual, "hideUnknownSalary")
		})
	})

	Convey("Given no events", t, func() {
		r := report.New().Build(nil, nil, at(0))
		So(r.TotalEvents, ShouldEqual, 0)
		So(r.AverageViewSeconds, ShouldEqual, 0)
		So(r.MostUsedFilter, ShouldBeNil)
		So(r.ByTimeOfDay.Len(), ShouldEqual, 4)
		_, err := json.Marshal(r)
		So(err, ShouldBeNil)
	})
}

func TestProperty_CountsSum(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	kinds := []model.EventKind{model.EventViewStart, model.EventColumnSelection, model.EventSortRequest, model.EventFilterToggle}

	properties.Property("every breakdown sums to the number of events", prop.ForAll(
		func(seeds []int) bool {
			events := make([]model.Interaction, len(seeds))
			filters := 0
			for i, s := range seeds {
				k := kinds[s%len(kinds)]
				events[i] = model.Interaction{
					Kind:          k,
					ShortID:       fmt.Sprintf("s%d", s%7),
					Timestamp:     at(s % 24),
					SortColumn:    model.ColSalary,
					SortDirection: model.Ascending,
					FilterType:    "hideUnknownHolidays",
				}
				if k == model.EventFilterToggle {
					filters++
				}
			}
			r := report.New().Build(events, nil, at(0))
			return r.ByKind.Total() == len(events) &&
				r.ByStudent.Total() == len(events) &&
				r.ByTimeOfDay.Total() == len(events) &&
				r.Filters.Total() == filters
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
