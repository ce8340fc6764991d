// Package model contains domain models passed between layers.
package model

import "github.com/okian/jobdb/internal/domain/value"

// Column names shown in the employer table.
const (
	ColName          = "企業名"
	ColEmployees     = "従業員数"
	ColBachelorHires = "学士卒採用数"
	ColFemaleRatio   = "女性比率"
	ColRecruited     = "採用人数"
	ColSalary        = "給与"
	ColBonus         = "ボーナス"
	ColWorkingHours  = "労働時間"
	ColHolidays      = "年間休日"
	ColOvertime      = "残業時間"
	ColWeeklyHoliday = "週休"
)

// Columns lists every selectable column in display order.
var Columns = []string{
	ColName,
	ColEmployees,
	ColBachelorHires,
	ColFemaleRatio,
	ColRecruited,
	ColSalary,
	ColBonus,
	ColWorkingHours,
	ColHolidays,
	ColOvertime,
	ColWeeklyHoliday,
}

// NumericColumns are compared by numeric magnitude when sorting.
var NumericColumns = map[string]struct{}{
	ColSalary:    {},
	ColHolidays:  {},
	ColOvertime:  {},
	ColEmployees: {},
}

// IsNumericColumn reports whether name sorts numerically.
func IsNumericColumn(name string) bool {
	_, ok := NumericColumns[name]
	return ok
}

// Company is a base employer record. Nil pointers are absent attributes.
type Company struct {
	ID              string
	Name            string
	EmployeesCount  *int64
	Salary          *int64
	Bonus           *string
	WorkingHours    *float64
	HolidaysPerYear *int64
	OvertimeHours   *float64
	WeeklyHoliday   *string
}

// CompanyStats is the optional one-to-one stats record of a company.
type CompanyStats struct {
	CompanyID              string
	BachelorGraduatesCount *int64
	FemaleRatio            *float64
}

// EmploymentStats is the optional one-to-one metrics record of a company.
type EmploymentStats struct {
	CompanyID      string
	RecruitedCount *int64
}

// Row is one merged, display-ready employer.
type Row struct {
	ID    string
	Name  string
	Cells map[string]value.Value
}

// Cell returns the value of column name, or Unknown when the row has no such column.
func (r Row) Cell(name string) value.Value {
	if v, ok := r.Cells[name]; ok {
		return v
	}
	return value.Unknown()
}
