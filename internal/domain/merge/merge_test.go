package merge_test

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobdb/internal/domain/merge"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/value"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestMerge(t *testing.T) {
	Convey("Given companies with and without related records", t, func() {
		m := merge.New()
		companies := []model.Company{
			{
				ID: "1", Name: "Alpha", EmployeesCount: i64(1200), Salary: i64(250000),
				Bonus: str("年2回"), WorkingHours: f64(8), HolidaysPerYear: i64(120),
				OvertimeHours: f64(20.5), WeeklyHoliday: str("完全週休2日制"),
			},
			{ID: "2", Name: "Beta", Salary: i64(0)},
		}
		stats := []model.CompanyStats{
			{CompanyID: "1", BachelorGraduatesCount: i64(0), FemaleRatio: f64(42.5)},
			{CompanyID: "1", BachelorGraduatesCount: i64(99)},
		}
		employment := []model.EmploymentStats{{CompanyID: "2"}}

		rows := m.Merge(companies, stats, employment)

		Convey("Then every company yields one row in input order", func() {
			So(len(rows), ShouldEqual, 2)
			So(rows[0].ID, ShouldEqual, "1")
			So(rows[1].ID, ShouldEqual, "2")
		})

		Convey("Then known attributes are formatted", func() {
			r := rows[0]
			So(r.Cell(model.ColName).String(), ShouldEqual, "Alpha")
			So(r.Cell(model.ColEmployees).String(), ShouldEqual, "1,200")
			So(r.Cell(model.ColSalary).String(), ShouldEqual, "250,000円")
			So(r.Cell(model.ColWorkingHours).String(), ShouldEqual, "8 時間")
			So(r.Cell(model.ColHolidays).String(), ShouldEqual, "120 日")
			So(r.Cell(model.ColOvertime).String(), ShouldEqual, "20.5 時間")
			So(r.Cell(model.ColWeeklyHoliday).String(), ShouldEqual, "完全週休2日制")
			So(r.Cell(model.ColBonus).String(), ShouldEqual, "年2回")
			So(r.Cell(model.ColFemaleRatio).String(), ShouldEqual, "42.5")

			n, ok := r.Cell(model.ColSalary).Number()
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 250000)
		})

		Convey("Then the first stats record wins and zero counts are kept", func() {
			So(rows[0].Cell(model.ColBachelorHires).String(), ShouldEqual, "0")
		})

		Convey("Then a missing related record is NoRecord", func() {
			So(rows[1].Cell(model.ColBachelorHires).Kind(), ShouldEqual, value.KindNoRecord)
			So(rows[1].Cell(model.ColFemaleRatio).Kind(), ShouldEqual, value.KindNoRecord)
			So(rows[0].Cell(model.ColRecruited).Kind(), ShouldEqual, value.KindNoRecord)
		})

		Convey("Then a present record with a null attribute is Unknown", func() {
			So(rows[1].Cell(model.ColRecruited).Kind(), ShouldEqual, value.KindUnknown)
		})

		Convey("Then absent and zero base attributes are Unknown", func() {
			So(rows[1].Cell(model.ColSalary).Kind(), ShouldEqual, value.KindUnknown)
			So(rows[1].Cell(model.ColHolidays).Kind(), ShouldEqual, value.KindUnknown)
			So(rows[1].Cell(model.ColWeeklyHoliday).Kind(), ShouldEqual, value.KindUnknown)
			So(rows[1].Cell(model.ColEmployees).Kind(), ShouldEqual, value.KindUnknown)
		})
	})

	Convey("Given no companies", t, func() {
		rows := merge.New().Merge(nil, []model.CompanyStats{{CompanyID: "x"}}, nil)
		So(rows, ShouldBeEmpty)
	})
}

func TestProperty_MergeIsTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	m := merge.New()

	properties.Property("every company yields exactly one row in input order", prop.ForAll(
		func(n int, statsMask []bool) bool {
			companies := make([]model.Company, n)
			var stats []model.CompanyStats
			for i := range companies {
				id := strconv.Itoa(i)
				companies[i] = model.Company{ID: id, Name: "c" + id}
				if i < len(statsMask) && statsMask[i] {
					stats = append(stats, model.CompanyStats{CompanyID: id})
				}
			}
			rows := m.Merge(companies, stats, nil)
			if len(rows) != n {
				return false
			}
			for i, r := range rows {
				if r.ID != companies[i].ID || len(r.Cells) != len(model.Columns) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
