// Package merge joins companies with their optional stats and metrics
// records into display-ready rows.
package merge

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/value"
)

// Merger builds rows. It is safe for concurrent use.
type Merger struct {
	locale  language.Tag
	printer *message.Printer
}

// New creates a Merger. The default locale is Japanese.
func New(opts ...Option) *Merger {
	m := &Merger{locale: language.Japanese}
	for _, opt := range opts {
		opt(m)
	}
	m.printer = message.NewPrinter(m.locale)
	return m
}

// source bundles a company with its related records; either may be nil.
type source struct {
	company    *model.Company
	stats      *model.CompanyStats
	employment *model.EmploymentStats
}

type column struct {
	name   string
	derive func(m *Merger, s source) value.Value
}

var columns = []column{
	{model.ColName, func(_ *Merger, s source) value.Value {
		return text(&s.company.Name)
	}},
	{model.ColEmployees, func(m *Merger, s source) value.Value {
		return m.count(s.company.EmployeesCount, "")
	}},
	{model.ColBachelorHires, func(m *Merger, s source) value.Value {
		if s.stats == nil {
			return value.NoRecord()
		}
		return m.countKeepZero(s.stats.BachelorGraduatesCount)
	}},
	{model.ColFemaleRatio, func(_ *Merger, s source) value.Value {
		if s.stats == nil {
			return value.NoRecord()
		}
		if s.stats.FemaleRatio == nil {
			return value.Unknown()
		}
		f := *s.stats.FemaleRatio
		return value.KnownNumber(f, strconv.FormatFloat(f, 'f', -1, 64))
	}},
	{model.ColRecruited, func(m *Merger, s source) value.Value {
		if s.employment == nil {
			return value.NoRecord()
		}
		return m.countKeepZero(s.employment.RecruitedCount)
	}},
	{model.ColSalary, func(m *Merger, s source) value.Value {
		return m.count(s.company.Salary, "円")
	}},
	{model.ColBonus, func(_ *Merger, s source) value.Value {
		return text(s.company.Bonus)
	}},
	{model.ColWorkingHours, func(_ *Merger, s source) value.Value {
		return measure(s.company.WorkingHours, " 時間")
	}},
	{model.ColHolidays, func(_ *Merger, s source) value.Value {
		if s.company.HolidaysPerYear == nil {
			return value.Unknown()
		}
		f := float64(*s.company.HolidaysPerYear)
		return measure(&f, " 日")
	}},
	{model.ColOvertime, func(_ *Merger, s source) value.Value {
		return measure(s.company.OvertimeHours, " 時間")
	}},
	{model.ColWeeklyHoliday, func(_ *Merger, s source) value.Value {
		return text(s.company.WeeklyHoliday)
	}},
}

// Merge produces exactly one row per company, in input order. When several
// stats or metrics records share a company id the first one wins.
func (m *Merger) Merge(companies []model.Company, stats []model.CompanyStats, employment []model.EmploymentStats) []model.Row {
	statsByID := make(map[string]*model.CompanyStats, len(stats))
	for i := range stats {
		if _, ok := statsByID[stats[i].CompanyID]; !ok {
			statsByID[stats[i].CompanyID] = &stats[i]
		}
	}
	empByID := make(map[string]*model.EmploymentStats, len(employment))
	for i := range employment {
		if _, ok := empByID[employment[i].CompanyID]; !ok {
			empByID[employment[i].CompanyID] = &employment[i]
		}
	}

	rows := make([]model.Row, 0, len(companies))
	for i := range companies {
		c := &companies[i]
		src := source{company: c, stats: statsByID[c.ID], employment: empByID[c.ID]}
		cells := make(map[string]value.Value, len(columns))
		for _, col := range columns {
			cells[col.name] = col.derive(m, src)
		}
		rows = append(rows, model.Row{ID: c.ID, Name: c.Name, Cells: cells})
	}
	return rows
}

// count formats a positive integer with thousands separators; nil and zero are Unknown.
func (m *Merger) count(n *int64, unit string) value.Value {
	if n == nil || *n == 0 {
		return value.Unknown()
	}
	return value.KnownNumber(float64(*n), m.printer.Sprintf("%d", *n)+unit)
}

// countKeepZero is count for attributes where zero is a real observation.
func (m *Merger) countKeepZero(n *int64) value.Value {
	if n == nil {
		return value.Unknown()
	}
	return value.KnownNumber(float64(*n), m.printer.Sprintf("%d", *n))
}

func measure(f *float64, unit string) value.Value {
	if f == nil || *f == 0 {
		return value.Unknown()
	}
	return value.KnownNumber(*f, strconv.FormatFloat(*f, 'f', -1, 64)+unit)
}

func text(s *string) value.Value {
	if s == nil || *s == "" {
		return value.Unknown()
	}
	return value.Known(*s)
}
