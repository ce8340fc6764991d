package repository

import (
	"fmt"
	"slices"
)

// Table names a backend table.
type Table string

const (
	Companies            Table = "companies"
	CompanyStats         Table = "company_stats"
	EmploymentStatistics Table = "employment_statistics"
	ViewLogs             Table = "view_logs"
	ColumnSelections     Table = "column_selections"
	SortOperations       Table = "sort_operations"
	FilterOperations     Table = "filter_operations"
	Bookmarks            Table = "bookmarks"
	Users                Table = "users"
)

// ColumnType is the logical type of a column.
type ColumnType uint8

const (
	TypeText ColumnType = iota
	TypeInt
	TypeReal
	TypeBool
	TypeTime
	TypeList
)

// Column describes one column of a table.
type Column struct {
	Name string
	Type ColumnType
}

// Shared column names.
const (
	ColID        = "id"
	ColUserID    = "user_id"
	ColStudentID = "student_id"
	ColCompanyID = "company_id"
	ColTimestamp = "timestamp"
	ColPage      = "page"
)

// Schema lists the columns of every table; id is always first.
var Schema = map[Table][]Column{
	Companies: {
		{ColID, TypeText},
		{"name", TypeText},
		{"employees_count", TypeInt},
		{"salary", TypeInt},
		{"bonus", TypeText},
		{"working_hours", TypeReal},
		{"holidays_per_year", TypeInt},
		{"overtime_hours", TypeReal},
		{"weekly_holiday", TypeText},
	},
	CompanyStats: {
		{ColID, TypeText},
		{ColCompanyID, TypeText},
		{"bachelor_graduates_count", TypeInt},
		{"female_ratio", TypeReal},
	},
	EmploymentStatistics: {
		{ColID, TypeText},
		{ColCompanyID, TypeText},
		{"recruited_count", TypeInt},
	},
	ViewLogs: {
		{ColID, TypeText},
		{ColUserID, TypeText},
		{ColStudentID, TypeText},
		{ColPage, TypeText},
		{"view_time", TypeInt},
		{"scroll_depth", TypeInt},
		{"article_id", TypeText},
		{ColTimestamp, TypeTime},
	},
	ColumnSelections: {
		{ColID, TypeText},
		{ColUserID, TypeText},
		{ColStudentID, TypeText},
		{"selected_columns", TypeList},
		{ColTimestamp, TypeTime},
	},
	SortOperations: {
		{ColID, TypeText},
		{ColUserID, TypeText},
		{ColStudentID, TypeText},
		{"sort_column", TypeText},
		{"sort_direction", TypeText},
		{ColTimestamp, TypeTime},
	},
	FilterOperations: {
		{ColID, TypeText},
		{ColUserID, TypeText},
		{ColStudentID, TypeText},
		{"filter_type", TypeText},
		{"filter_value", TypeBool},
		{ColTimestamp, TypeTime},
	},
	Bookmarks: {
		{ColID, TypeText},
		{ColUserID, TypeText},
		{ColCompanyID, TypeText},
		{"created_at", TypeTime},
	},
	Users: {
		{ColID, TypeText},
		{"email", TypeText},
		{"password_hash", TypeText},
		{"is_admin", TypeBool},
	},
}

// Tables returns every table name in a stable order.
func Tables() []Table {
	out := make([]Table, 0, len(Schema))
	for t := range Schema {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// EventTables hold interaction events.
var EventTables = []Table{ViewLogs, ColumnSelections, SortOperations, FilterOperations}

// EntityTables hold the employer catalog.
var EntityTables = []Table{Companies, CompanyStats, EmploymentStatistics}

// ColumnOf returns the column definition of name in table.
func ColumnOf(table Table, name string) (Column, error) {
	cols, ok := Schema[table]
	if !ok {
		return Column{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	for _, c := range cols {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, name)
}

// CheckRecord verifies every key of rec is a column of table.
func CheckRecord(table Table, rec map[string]any) error {
	for name := range rec {
		if _, err := ColumnOf(table, name); err != nil {
			return err
		}
	}
	return nil
}
