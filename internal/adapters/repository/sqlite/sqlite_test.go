package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/domain/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobdb.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	Convey("Given a migrated sqlite store", t, func() {
		s := openTemp(t)

		Convey("When migrating twice", func() {
			So(s.Migrate(ctx), ShouldBeNil)
		})

		Convey("When a company is inserted and read back", func() {
			salary := int64(250000)
			hours := 8.0
			_, err := s.Insert(ctx, repository.Companies, repository.EncodeCompany(model.Company{
				ID: "c1", Name: "Alpha", Salary: &salary, WorkingHours: &hours,
			}))
			So(err, ShouldBeNil)

			rows, err := s.Query(ctx, repository.Companies, repository.Query{})
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)

			c := repository.DecodeCompany(rows[0])
			So(c.Name, ShouldEqual, "Alpha")
			So(*c.Salary, ShouldEqual, salary)
			So(*c.WorkingHours, ShouldEqual, hours)
			So(c.Bonus, ShouldBeNil)
		})

		Convey("When view logs are inserted with increasing timestamps", func() {
			for i, ms := range []int{0, 500, 1000, 1500} {
				_, err := s.Insert(ctx, repository.ViewLogs, repository.Record{
					"id":        []string{"a", "b", "c", "d"}[i],
					"user_id":   "u1",
					"page":      "jobs",
					"view_time": 0,
					"timestamp": base.Add(time.Duration(ms) * time.Millisecond),
				})
				So(err, ShouldBeNil)
			}

			Convey("Then the latest one is found by descending timestamp", func() {
				rows, err := s.Query(ctx, repository.ViewLogs, repository.Query{
					Where:      map[string]any{"user_id": "u1", "page": "jobs"},
					OrderBy:    "timestamp",
					Descending: true,
					Limit:      1,
				})
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].ID(), ShouldEqual, "d")
				So(rows[0]["timestamp"].(time.Time).Equal(base.Add(1500*time.Millisecond)), ShouldBeTrue)
			})

			Convey("Then updates patch the row", func() {
				So(s.Update(ctx, repository.ViewLogs, "b", repository.Record{"view_time": 12, "scroll_depth": 100}), ShouldBeNil)
				rows, _ := s.Query(ctx, repository.ViewLogs, repository.Query{Where: map[string]any{"id": "b"}})
				So(rows[0]["view_time"], ShouldEqual, int64(12))
				So(rows[0]["scroll_depth"], ShouldEqual, int64(100))
			})

			Convey("Then updating a missing row fails with ErrNotFound", func() {
				err := s.Update(ctx, repository.ViewLogs, "zzz", repository.Record{"view_time": 1})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When events of every kind are stored", func() {
			events := []model.Interaction{
				{Kind: model.EventColumnSelection, ActorID: "u1", ShortID: "s1", Columns: []string{model.ColSalary}, Timestamp: base},
				{Kind: model.EventSortRequest, ActorID: "u1", ShortID: "s1", SortColumn: model.ColSalary, SortDirection: model.Descending, Timestamp: base},
				{Kind: model.EventFilterToggle, ActorID: "u1", ShortID: "s1", FilterType: "hideUnknownSalary", FilterValue: true, Timestamp: base},
			}
			for _, e := range events {
				table, rec, err := repository.EncodeInteraction(e)
				So(err, ShouldBeNil)
				_, err = s.Insert(ctx, table, rec)
				So(err, ShouldBeNil)
			}

			Convey("Then they decode to the same values", func() {
				rows, _ := s.Query(ctx, repository.ColumnSelections, repository.Query{})
				e, err := repository.DecodeInteraction(repository.ColumnSelections, rows[0])
				So(err, ShouldBeNil)
				So(e.Columns, ShouldResemble, []string{model.ColSalary})

				rows, _ = s.Query(ctx, repository.FilterOperations, repository.Query{Where: map[string]any{"filter_value": true}})
				So(len(rows), ShouldEqual, 1)
				e, _ = repository.DecodeInteraction(repository.FilterOperations, rows[0])
				So(e.FilterValue, ShouldBeTrue)
			})
		})

		Convey("When a stored column list is malformed", func() {
			_, err := s.db.ExecContext(ctx, `INSERT INTO "column_selections" ("id", "selected_columns") VALUES ('x', '[broken')`)
			So(err, ShouldBeNil)

			rows, err := s.Query(ctx, repository.ColumnSelections, repository.Query{})

			Convey("Then the query succeeds and decoding reports the row", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				e, err := repository.DecodeInteraction(repository.ColumnSelections, rows[0])
				So(errors.Is(err, repository.ErrMalformedValue), ShouldBeTrue)
				So(e.Columns, ShouldBeEmpty)
			})
		})

		Convey("When bookmarks are deleted", func() {
			var changes []repository.Change
			cancel := s.Subscribe(repository.Bookmarks, func(c repository.Change) { changes = append(changes, c) })
			defer cancel()

			_, _ = s.Insert(ctx, repository.Bookmarks, repository.Record{"user_id": "u1", "company_id": "c1"})
			_, _ = s.Insert(ctx, repository.Bookmarks, repository.Record{"user_id": "u1", "company_id": "c2"})
			n, err := s.Delete(ctx, repository.Bookmarks, map[string]any{"user_id": "u1", "company_id": "c1"})

			Convey("Then one row is removed and every write is published", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(len(changes), ShouldEqual, 3)
				So(changes[2].Op, ShouldEqual, repository.OpDelete)
			})
		})

		Convey("When querying an unknown column", func() {
			_, err := s.Query(ctx, repository.Users, repository.Query{Where: map[string]any{"nope": 1}})
			So(errors.Is(err, repository.ErrUnknownColumn), ShouldBeTrue)
		})
	})
}
