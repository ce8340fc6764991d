package repository

import (
	"fmt"
	"time"

	"github.com/okian/jobdb/internal/domain/model"
)

func str(r Record, col string) string {
	s, _ := r[col].(string)
	return s
}

func optStr(r Record, col string) *string {
	if s, ok := r[col].(string); ok {
		return &s
	}
	return nil
}

func optInt(r Record, col string) *int64 {
	if n, ok := r[col].(int64); ok {
		return &n
	}
	return nil
}

func optReal(r Record, col string) *float64 {
	if f, ok := r[col].(float64); ok {
		return &f
	}
	return nil
}

func intVal(r Record, col string) int {
	n, _ := r[col].(int64)
	return int(n)
}

func boolVal(r Record, col string) bool {
	b, _ := r[col].(bool)
	return b
}

func timeVal(r Record, col string) time.Time {
	t, _ := r[col].(time.Time)
	return t
}

// DecodeCompany maps a companies row.
func DecodeCompany(r Record) model.Company {
	return model.Company{
		ID:              r.ID(),
		Name:            str(r, "name"),
		EmployeesCount:  optInt(r, "employees_count"),
		Salary:          optInt(r, "salary"),
		Bonus:           optStr(r, "bonus"),
		WorkingHours:    optReal(r, "working_hours"),
		HolidaysPerYear: optInt(r, "holidays_per_year"),
		OvertimeHours:   optReal(r, "overtime_hours"),
		WeeklyHoliday:   optStr(r, "weekly_holiday"),
	}
}

// EncodeCompany maps a company to a companies row.
func EncodeCompany(c model.Company) Record {
	r := Record{ColID: c.ID, "name": c.Name}
	setPtr(r, "employees_count", c.EmployeesCount)
	setPtr(r, "salary", c.Salary)
	setPtr(r, "bonus", c.Bonus)
	setPtr(r, "working_hours", c.WorkingHours)
	setPtr(r, "holidays_per_year", c.HolidaysPerYear)
	setPtr(r, "overtime_hours", c.OvertimeHours)
	setPtr(r, "weekly_holiday", c.WeeklyHoliday)
	return r
}

func setPtr[T any](r Record, col string, p *T) {
	if p != nil {
		r[col] = *p
	}
}

// DecodeCompanyStats maps a company_stats row.
func DecodeCompanyStats(r Record) model.CompanyStats {
	return model.CompanyStats{
		CompanyID:              str(r, ColCompanyID),
		BachelorGraduatesCount: optInt(r, "bachelor_graduates_count"),
		FemaleRatio:            optReal(r, "female_ratio"),
	}
}

// EncodeCompanyStats maps stats to a company_stats row.
func EncodeCompanyStats(s model.CompanyStats) Record {
	r := Record{ColCompanyID: s.CompanyID}
	setPtr(r, "bachelor_graduates_count", s.BachelorGraduatesCount)
	setPtr(r, "female_ratio", s.FemaleRatio)
	return r
}

// DecodeEmploymentStats maps an employment_statistics row.
func DecodeEmploymentStats(r Record) model.EmploymentStats {
	return model.EmploymentStats{
		CompanyID:      str(r, ColCompanyID),
		RecruitedCount: optInt(r, "recruited_count"),
	}
}

// EncodeEmploymentStats maps metrics to an employment_statistics row.
func EncodeEmploymentStats(e model.EmploymentStats) Record {
	r := Record{ColCompanyID: e.CompanyID}
	setPtr(r, "recruited_count", e.RecruitedCount)
	return r
}

// DecodeUser maps a users row.
func DecodeUser(r Record) model.User {
	return model.User{
		ID:           r.ID(),
		Email:        str(r, "email"),
		PasswordHash: str(r, "password_hash"),
		Admin:        boolVal(r, "is_admin"),
	}
}

// EncodeUser maps a user to a users row.
func EncodeUser(u model.User) Record {
	r := Record{"email": u.Email, "password_hash": u.PasswordHash, "is_admin": u.Admin}
	if u.ID != "" {
		r[ColID] = u.ID
	}
	return r
}

// DecodeBookmark maps a bookmarks row.
func DecodeBookmark(r Record) model.Bookmark {
	return model.Bookmark{
		UserID:    str(r, ColUserID),
		CompanyID: str(r, ColCompanyID),
		CreatedAt: timeVal(r, "created_at"),
	}
}

// EncodeInteraction maps an appendable event to its table and row.
// View-end events are updates of a view-start row and are rejected.
func EncodeInteraction(e model.Interaction) (Table, Record, error) {
	r := Record{
		ColUserID:    e.ActorID,
		ColStudentID: e.ShortID,
		ColTimestamp: e.Timestamp,
	}
	if e.ID != "" {
		r[ColID] = e.ID
	}
	switch e.Kind {
	case model.EventViewStart:
		r[ColPage] = e.Page
		r["view_time"] = int64(e.ViewSeconds)
		r["scroll_depth"] = int64(e.ScrollDepth)
		if e.ArticleID != "" {
			r["article_id"] = e.ArticleID
		}
		return ViewLogs, r, nil
	case model.EventColumnSelection:
		cols := e.Columns
		if cols == nil {
			cols = []string{}
		}
		r["selected_columns"] = cols
		return ColumnSelections, r, nil
	case model.EventSortRequest:
		r["sort_column"] = e.SortColumn
		r["sort_direction"] = string(e.SortDirection)
		return SortOperations, r, nil
	case model.EventFilterToggle:
		r["filter_type"] = e.FilterType
		r["filter_value"] = e.FilterValue
		return FilterOperations, r, nil
	default:
		return "", nil, fmt.Errorf("%w: event kind %q", ErrInvalidValue, e.Kind)
	}
}

// DecodeInteraction maps an event table row. A malformed selected-columns
// payload yields an empty column list together with ErrMalformedValue.
func DecodeInteraction(table Table, r Record) (model.Interaction, error) {
	e := model.Interaction{
		ID:        r.ID(),
		ActorID:   str(r, ColUserID),
		ShortID:   str(r, ColStudentID),
		Timestamp: timeVal(r, ColTimestamp),
	}
	switch table {
	case ViewLogs:
		e.Kind = model.EventViewStart
		e.Page = str(r, ColPage)
		e.ViewSeconds = intVal(r, "view_time")
		e.ScrollDepth = intVal(r, "scroll_depth")
		e.ArticleID = str(r, "article_id")
		e.StartedAt = e.Timestamp
	case ColumnSelections:
		e.Kind = model.EventColumnSelection
		switch v := r["selected_columns"].(type) {
		case []string:
			e.Columns = v
		case nil:
			e.Columns = []string{}
		case string:
			cols, err := DecodeList("selected_columns", []byte(v))
			if err != nil {
				e.Columns = []string{}
				return e, err
			}
			e.Columns = cols
		default:
			e.Columns = []string{}
			return e, fmt.Errorf("%w: selected_columns: unexpected %T", ErrMalformedValue, v)
		}
	case SortOperations:
		e.Kind = model.EventSortRequest
		e.SortColumn = str(r, "sort_column")
		e.SortDirection = model.Direction(str(r, "sort_direction"))
	case FilterOperations:
		e.Kind = model.EventFilterToggle
		e.FilterType = str(r, "filter_type")
		e.FilterValue = boolVal(r, "filter_value")
	default:
		return e, fmt.Errorf("%w: %s is not an event table", ErrUnknownTable, table)
	}
	return e, nil
}
