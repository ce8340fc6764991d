package postgres

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/okian/jobdb/internal/adapters/repository"
)

func TestModelsMatchSchema(t *testing.T) {
	Convey("Given the gorm models", t, func() {
		cache := &sync.Map{}
		for _, table := range repository.Tables() {
			m := modelFor(table)
			So(m, ShouldNotBeNil)

			parsed, err := schema.Parse(m, cache, schema.NamingStrategy{})
			So(err, ShouldBeNil)

			Convey("Then "+string(table)+" has the table name and columns of the schema", func() {
				So(parsed.Table, ShouldEqual, string(table))
				var cols []string
				for _, f := range parsed.Fields {
					if f.DBName != "" {
						cols = append(cols, f.DBName)
					}
				}
				for _, c := range repository.Schema[table] {
					So(cols, ShouldContain, c.Name)
				}
				So(cols, ShouldContain, seqColumn)
				So(len(cols), ShouldEqual, len(repository.Schema[table])+1)
				So(columnNames(table), ShouldNotContain, seqColumn)
				So(columnNames(table), ShouldHaveLength, len(repository.Schema[table]))
			})
		}
		So(modelFor("nope"), ShouldBeNil)
	})
}

func TestEncode(t *testing.T) {
	Convey("Given a record with a list value", t, func() {
		out := encode(repository.Record{"selected_columns": []string{"給与"}, "user_id": "u1"})

		Convey("Then the list becomes JSON and scalars pass through", func() {
			So(out["selected_columns"], ShouldResemble, datatypes.JSON(`["給与"]`))
			So(out["user_id"], ShouldEqual, "u1")
		})
	})
}

func TestOrderBy(t *testing.T) {
	Convey("Given queries against the companies table", t, func() {
		Convey("An unordered query keeps insertion order", func() {
			order, err := orderBy(repository.Companies, repository.Query{})
			So(err, ShouldBeNil)
			So(order, ShouldResemble, []clause.OrderByColumn{{Column: clause.Column{Name: seqColumn}}})
		})

		Convey("An ordered query breaks ties by insertion order in the same direction", func() {
			order, err := orderBy(repository.ViewLogs, repository.Query{OrderBy: repository.ColTimestamp, Descending: true})
			So(err, ShouldBeNil)
			So(order, ShouldResemble, []clause.OrderByColumn{
				{Column: clause.Column{Name: repository.ColTimestamp}, Desc: true},
				{Column: clause.Column{Name: seqColumn}, Desc: true},
			})
		})

		Convey("Unknown columns are rejected", func() {
			_, err := orderBy(repository.Companies, repository.Query{OrderBy: "nope"})
			So(err, ShouldNotBeNil)
		})
	})
}
