package model_test

import (
	"testing"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/value"
	"github.com/smartystreets/goconvey/convey"
)

func TestShortID(t *testing.T) {
	convey.Convey("Given actor identifiers", t, func() {
		convey.Convey("When the identifier has a separator", func() {
			convey.So(model.ShortID("s1234567@example.com"), convey.ShouldEqual, "s1234567")
			convey.So(model.ShortID("a@b@c"), convey.ShouldEqual, "a")
		})

		convey.Convey("When the identifier has no separator", func() {
			convey.So(model.ShortID("plain"), convey.ShouldEqual, "plain")
			convey.So(model.ShortID(""), convey.ShouldEqual, "")
		})

		convey.Convey("When the separator is leading", func() {
			convey.So(model.ShortID("@example.com"), convey.ShouldEqual, "")
		})

		convey.Convey("Then Actor.ShortID uses the same derivation", func() {
			a := model.Actor{ID: "u1", Identifier: "taro@example.com"}
			convey.So(a.ShortID(), convey.ShouldEqual, model.ShortID(a.Identifier))
		})
	})
}

func TestRowCell(t *testing.T) {
	convey.Convey("Given a merged row", t, func() {
		row := model.Row{ID: "1", Cells: map[string]value.Value{
			model.ColHolidays: value.KnownNumber(120, "120 日"),
		}}

		convey.So(row.Cell(model.ColHolidays).String(), convey.ShouldEqual, "120 日")
		convey.So(row.Cell("no-such-column").Kind(), convey.ShouldEqual, value.KindUnknown)
	})
}

func TestColumns(t *testing.T) {
	convey.Convey("Given the column registry", t, func() {
		convey.So(model.IsNumericColumn(model.ColSalary), convey.ShouldBeTrue)
		convey.So(model.IsNumericColumn(model.ColEmployees), convey.ShouldBeTrue)
		convey.So(model.IsNumericColumn(model.ColName), convey.ShouldBeFalse)
		convey.So(model.Ascending.Label(), convey.ShouldEqual, "昇順")
		convey.So(model.Descending.Label(), convey.ShouldEqual, "降順")
		for name := range model.NumericColumns {
			convey.So(model.Columns, convey.ShouldContain, name)
		}
	})
}
