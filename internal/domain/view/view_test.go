package view_test

import (
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobdb/internal/domain/filter"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/sorting"
	"github.com/okian/jobdb/internal/domain/value"
	"github.com/okian/jobdb/internal/domain/view"
)

type call struct {
	kind    string
	columns []string
	sort    sorting.Config
	name    string
	enabled bool
}

type recorder struct{ calls []call }

func (r *recorder) ColumnsChanged(columns []string) {
	r.calls = append(r.calls, call{kind: "columns", columns: columns})
}

func (r *recorder) SortRequested(cfg sorting.Config) {
	r.calls = append(r.calls, call{kind: "sort", sort: cfg})
}

func (r *recorder) FilterToggled(name string, enabled bool) {
	r.calls = append(r.calls, call{kind: "filter", name: name, enabled: enabled})
}

func TestView(t *testing.T) {
	Convey("Given a new view", t, func() {
		rec := &recorder{}
		v := view.New(filter.NewRegistry(), sorting.New(), rec)

		Convey("Then defaults are set and nothing is recorded", func() {
			s := v.State()
			So(s.Columns, ShouldResemble, []string{model.ColHolidays, model.ColSalary})
			So(s.Sort, ShouldResemble, sorting.Config{Key: model.ColSalary, Direction: model.Ascending})
			So(len(s.Filters), ShouldEqual, 5)
			for _, on := range s.Filters {
				So(on, ShouldBeFalse)
			}
			So(rec.calls, ShouldBeEmpty)
		})

		Convey("When toggling a column on and off", func() {
			s := v.ToggleColumn(model.ColBonus)
			So(s.Columns, ShouldResemble, []string{model.ColHolidays, model.ColSalary, model.ColBonus})
			s = v.ToggleColumn(model.ColHolidays)
			So(s.Columns, ShouldResemble, []string{model.ColSalary, model.ColBonus})

			Convey("Then each toggle records the new selection once", func() {
				So(len(rec.calls), ShouldEqual, 2)
				So(rec.calls[0].columns, ShouldResemble, []string{model.ColHolidays, model.ColSalary, model.ColBonus})
				So(rec.calls[1].columns, ShouldResemble, []string{model.ColSalary, model.ColBonus})
			})
		})

		Convey("When sorting salary then holidays", func() {
			s := v.RequestSort(model.ColSalary)
			So(s.Sort, ShouldResemble, sorting.Config{Key: model.ColSalary, Direction: model.Descending})
			s = v.RequestSort(model.ColHolidays)
			So(s.Sort, ShouldResemble, sorting.Config{Key: model.ColHolidays, Direction: model.Ascending})

			Convey("Then the resulting configs are recorded", func() {
				So(len(rec.calls), ShouldEqual, 2)
				So(rec.calls[0].sort.Direction, ShouldEqual, model.Descending)
				So(rec.calls[1].sort.Key, ShouldEqual, model.ColHolidays)
			})
		})

		Convey("When toggling a registered filter twice", func() {
			s, err := v.ToggleFilter(filter.HideUnknownHolidays)
			So(err, ShouldBeNil)
			So(s.Filters[filter.HideUnknownHolidays], ShouldBeTrue)
			s, err = v.ToggleFilter(filter.HideUnknownHolidays)
			So(err, ShouldBeNil)
			So(s.Filters[filter.HideUnknownHolidays], ShouldBeFalse)

			So(len(rec.calls), ShouldEqual, 2)
			So(rec.calls[0].enabled, ShouldBeTrue)
			So(rec.calls[1].enabled, ShouldBeFalse)
		})

		Convey("When toggling an unknown filter", func() {
			s, err := v.ToggleFilter("hideEverything")

			Convey("Then it is rejected without state change or record", func() {
				So(errors.Is(err, filter.ErrUnknownFilter), ShouldBeTrue)
				_, present := s.Filters["hideEverything"]
				So(present, ShouldBeFalse)
				So(rec.calls, ShouldBeEmpty)
			})
		})

		Convey("When a returned state is mutated", func() {
			s := v.State()
			s.Columns[0] = "x"
			s.Filters[filter.HideUnknownSalary] = true

			Convey("Then the view is unaffected", func() {
				So(v.State().Columns[0], ShouldEqual, model.ColHolidays)
				So(v.State().Filters[filter.HideUnknownSalary], ShouldBeFalse)
			})
		})
	})

	Convey("Given options", t, func() {
		v := view.New(filter.NewRegistry(), sorting.New(), &recorder{},
			view.WithColumns(model.ColName, model.ColName, model.ColBonus),
			view.WithSort(sorting.Config{}))
		s := v.State()
		So(s.Columns, ShouldResemble, []string{model.ColName, model.ColBonus})
		So(s.Sort.Key, ShouldEqual, "")
	})
}

func TestApply(t *testing.T) {
	Convey("Given rows with unknown holidays", t, func() {
		rows := []model.Row{
			{ID: "1", Cells: map[string]value.Value{model.ColHolidays: value.Unknown(), model.ColSalary: value.Known("30,000円")}},
			{ID: "2", Cells: map[string]value.Value{model.ColHolidays: value.Known("120 日"), model.ColSalary: value.Known("250,000円")}},
			{ID: "3", Cells: map[string]value.Value{model.ColHolidays: value.Known("100 日"), model.ColSalary: value.Known("200,000円")}},
		}
		v := view.New(filter.NewRegistry(), sorting.New(), &recorder{})

		Convey("When hideUnknownHolidays is enabled", func() {
			_, err := v.ToggleFilter(filter.HideUnknownHolidays)
			So(err, ShouldBeNil)
			out, s := v.Apply(rows, nil)

			Convey("Then the unknown row is gone and salary ascending applies", func() {
				So(s.Filters[filter.HideUnknownHolidays], ShouldBeTrue)
				So(len(out), ShouldEqual, 2)
				So(out[0].ID, ShouldEqual, "3")
				So(out[1].ID, ShouldEqual, "2")
			})
		})
	})
}

func TestView_ConcurrentMutations(t *testing.T) {
	Convey("Given a view mutated from many goroutines", t, func() {
		rec := &recorder{}
		v := view.New(filter.NewRegistry(), sorting.New(), rec)
		cols := []string{model.ColBonus, model.ColHolidays, model.ColOvertime, model.ColEmployees}

		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v.ToggleColumn(cols[i%len(cols)])
				v.RequestSort(cols[i%len(cols)])
				_, _ = v.ToggleFilter(filter.HideUnknownSalary)
			}()
		}
		wg.Wait()

		Convey("Then the last recorded events match the final state", func() {
			final := v.State()
			var lastCols, lastSort, lastFilter *call
			for i := range rec.calls {
				switch rec.calls[i].kind {
				case "columns":
					lastCols = &rec.calls[i]
				case "sort":
					lastSort = &rec.calls[i]
				case "filter":
					lastFilter = &rec.calls[i]
				}
			}
			So(len(rec.calls), ShouldEqual, 192)
			So(lastCols.columns, ShouldResemble, final.Columns)
			So(lastSort.sort, ShouldResemble, final.Sort)
			So(lastFilter.enabled, ShouldEqual, final.Filters[filter.HideUnknownSalary])
		})
	})
}
