package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/model"
)

// SeedUser is a demo account.
type SeedUser struct {
	ShortID  string
	Password string
	Admin    bool
}

// SeedData is demo content for an empty backend.
type SeedData struct {
	Companies  []model.Company
	Stats      []model.CompanyStats
	Employment []model.EmploymentStats
	Users      []SeedUser
}

func ptr[T any](v T) *T { return &v }

// DemoData returns a small catalog exercising known, unknown and missing values.
func DemoData() SeedData {
	return SeedData{
		Companies: []model.Company{
			{ID: "c-001", Name: "株式会社アルファ", EmployeesCount: ptr[int64](1200), Salary: ptr[int64](250000),
				Bonus: ptr("年2回"), WorkingHours: ptr(8.0), HolidaysPerYear: ptr[int64](125), OvertimeHours: ptr(20.0),
				WeeklyHoliday: ptr("完全週休2日制")},
			{ID: "c-002", Name: "ベータ工業", EmployeesCount: ptr[int64](300), Salary: ptr[int64](221000),
				WorkingHours: ptr(7.5), HolidaysPerYear: ptr[int64](120), WeeklyHoliday: ptr("週休2日制")},
			{ID: "c-003", Name: "ガンマ商事", Salary: ptr[int64](0), HolidaysPerYear: ptr[int64](105),
				OvertimeHours: ptr(35.5)},
			{ID: "c-004", Name: "デルタ システムズ", EmployeesCount: ptr[int64](85), Salary: ptr[int64](268000),
				Bonus: ptr("業績連動"), WorkingHours: ptr(8.0), OvertimeHours: ptr(12.0)},
		},
		Stats: []model.CompanyStats{
			{CompanyID: "c-001", BachelorGraduatesCount: ptr[int64](40), FemaleRatio: ptr(38.5)},
			{CompanyID: "c-002", BachelorGraduatesCount: ptr[int64](0)},
			{CompanyID: "c-004", FemaleRatio: ptr(22.0)},
		},
		Employment: []model.EmploymentStats{
			{CompanyID: "c-001", RecruitedCount: ptr[int64](55)},
			{CompanyID: "c-003"},
		},
		Users: []SeedUser{
			{ShortID: "s0001", Password: "student"},
			{ShortID: "s0002", Password: "student"},
			{ShortID: "admin", Password: "admin", Admin: true},
		},
	}
}

// Seed inserts data into the backend. Existing users are left untouched.
func (s *Service) Seed(ctx context.Context, data SeedData) error {
	if err := s.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, c := range data.Companies {
		if _, err := s.store.Insert(ctx, repository.Companies, repository.EncodeCompany(c)); err != nil {
			return fmt.Errorf("seed company %s: %w", c.ID, err)
		}
	}
	for _, st := range data.Stats {
		if _, err := s.store.Insert(ctx, repository.CompanyStats, repository.EncodeCompanyStats(st)); err != nil {
			return fmt.Errorf("seed stats %s: %w", st.CompanyID, err)
		}
	}
	for _, e := range data.Employment {
		if _, err := s.store.Insert(ctx, repository.EmploymentStatistics, repository.EncodeEmploymentStats(e)); err != nil {
			return fmt.Errorf("seed employment %s: %w", e.CompanyID, err)
		}
	}
	for _, u := range data.Users {
		_, err := s.auth.CreateUser(ctx, u.ShortID, u.Password, u.Admin)
		if err != nil && !errors.Is(err, auth.ErrUserExists) {
			return fmt.Errorf("seed user %s: %w", u.ShortID, err)
		}
	}
	return nil
}
