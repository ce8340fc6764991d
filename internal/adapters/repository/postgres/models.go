package postgres

import (
	"time"

	"gorm.io/datatypes"

	"github.com/okian/jobdb/internal/adapters/repository"
)

// seqColumn numbers rows in insertion order. It is not part of the
// repository schema and never leaves this package.
const seqColumn = "seq"

// Inserted is embedded in every model.
type Inserted struct {
	Seq int64 `gorm:"column:seq;autoIncrement;index"`
}

type Company struct {
	Inserted
	ID              string `gorm:"primaryKey;type:text"`
	Name            string `gorm:"not null"`
	EmployeesCount  *int64
	Salary          *int64
	Bonus           *string
	WorkingHours    *float64
	HolidaysPerYear *int64
	OvertimeHours   *float64
	WeeklyHoliday   *string
}

func (Company) TableName() string { return string(repository.Companies) }

type CompanyStat struct {
	Inserted
	ID                     string `gorm:"primaryKey;type:text"`
	CompanyID              string `gorm:"index"`
	BachelorGraduatesCount *int64
	FemaleRatio            *float64
}

func (CompanyStat) TableName() string { return string(repository.CompanyStats) }

type EmploymentStatistic struct {
	Inserted
	ID             string `gorm:"primaryKey;type:text"`
	CompanyID      string `gorm:"index"`
	RecruitedCount *int64
}

func (EmploymentStatistic) TableName() string { return string(repository.EmploymentStatistics) }

type ViewLog struct {
	Inserted
	ID          string `gorm:"primaryKey;type:text"`
	UserID      string `gorm:"index:idx_view_logs_user_page,priority:1"`
	StudentID   string
	Page        string `gorm:"index:idx_view_logs_user_page,priority:2"`
	ViewTime    *int64
	ScrollDepth *int64
	ArticleID   *string
	Timestamp   time.Time `gorm:"index:idx_view_logs_user_page,priority:3"`
}

func (ViewLog) TableName() string { return string(repository.ViewLogs) }

type ColumnSelection struct {
	Inserted
	ID              string `gorm:"primaryKey;type:text"`
	UserID          string
	StudentID       string
	SelectedColumns datatypes.JSON `gorm:"type:jsonb"`
	Timestamp       time.Time
}

func (ColumnSelection) TableName() string { return string(repository.ColumnSelections) }

type SortOperation struct {
	Inserted
	ID            string `gorm:"primaryKey;type:text"`
	UserID        string
	StudentID     string
	SortColumn    string
	SortDirection string
	Timestamp     time.Time
}

func (SortOperation) TableName() string { return string(repository.SortOperations) }

type FilterOperation struct {
	Inserted
	ID          string `gorm:"primaryKey;type:text"`
	UserID      string
	StudentID   string
	FilterType  string
	FilterValue bool
	Timestamp   time.Time
}

func (FilterOperation) TableName() string { return string(repository.FilterOperations) }

type Bookmark struct {
	Inserted
	ID        string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"index"`
	CompanyID string
	CreatedAt time.Time
}

func (Bookmark) TableName() string { return string(repository.Bookmarks) }

type User struct {
	Inserted
	ID           string `gorm:"primaryKey;type:text"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	IsAdmin      bool
}

func (User) TableName() string { return string(repository.Users) }

// modelFor returns a zero model pointer for table, or nil.
func modelFor(table repository.Table) any {
	switch table {
	case repository.Companies:
		return &Company{}
	case repository.CompanyStats:
		return &CompanyStat{}
	case repository.EmploymentStatistics:
		return &EmploymentStatistic{}
	case repository.ViewLogs:
		return &ViewLog{}
	case repository.ColumnSelections:
		return &ColumnSelection{}
	case repository.SortOperations:
		return &SortOperation{}
	case repository.FilterOperations:
		return &FilterOperation{}
	case repository.Bookmarks:
		return &Bookmark{}
	case repository.Users:
		return &User{}
	default:
		return nil
	}
}
