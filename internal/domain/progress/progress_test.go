package progress_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/curriculum/internal/domain/progress"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAccessors(t *testing.T) {
	Convey("Given a progress map", t, func() {
		p := progress.Map{
			"A": {Status: progress.Approved, Grade: progress.Grade(8)},
			"B": {Status: progress.Regular},
		}

		Convey("Then present entries resolve to their values", func() {
			So(p.StatusOf("A"), ShouldEqual, progress.Approved)
			g, ok := p.GradeOf("A")
			So(ok, ShouldBeTrue)
			So(g, ShouldEqual, 8)
		})

		Convey("Then an entry without grade has no grade", func() {
			_, ok := p.GradeOf("B")
			So(ok, ShouldBeFalse)
		})

		Convey("Then absent codes default to not taken with no grade", func() {
			So(p.StatusOf("UNKNOWN"), ShouldEqual, progress.NotTaken)
			_, ok := p.GradeOf("UNKNOWN")
			So(ok, ShouldBeFalse)
		})

		Convey("Then a nil map behaves as empty", func() {
			var empty progress.Map
			So(empty.StatusOf("A"), ShouldEqual, progress.NotTaken)
			So(empty.Clone(), ShouldNotBeNil)
		})
	})
}

func TestSetStatus(t *testing.T) {
	Convey("Given a course with a grade", t, func() {
		p := progress.Map{"A": {Status: progress.Approved, Grade: progress.Grade(9)}}

		Convey("When it is set back to not taken", func() {
			next := p.SetStatus("A", progress.NotTaken)

			Convey("Then the grade is cleared", func() {
				So(next.StatusOf("A"), ShouldEqual, progress.NotTaken)
				_, ok := next.GradeOf("A")
				So(ok, ShouldBeFalse)
			})

			Convey("Then the previous snapshot is untouched", func() {
				So(p.StatusOf("A"), ShouldEqual, progress.Approved)
				g, _ := p.GradeOf("A")
				So(g, ShouldEqual, 9)
			})
		})

		Convey("When it is set to regular", func() {
			next := p.SetStatus("A", progress.Regular)

			Convey("Then the grade is preserved", func() {
				g, ok := next.GradeOf("A")
				So(ok, ShouldBeTrue)
				So(g, ShouldEqual, 9)
			})
		})
	})
}

func TestSetGrade(t *testing.T) {
	Convey("Given an empty map", t, func() {
		p := progress.Map{}

		Convey("When a grade is set on an absent course", func() {
			next := p.SetGrade("A", progress.Grade(6.5))

			Convey("Then an entry is created as not taken", func() {
				So(next.StatusOf("A"), ShouldEqual, progress.NotTaken)
				g, ok := next.GradeOf("A")
				So(ok, ShouldBeTrue)
				So(g, ShouldEqual, 6.5)
				So(p, ShouldBeEmpty)
			})
		})

		Convey("When the grade is cleared", func() {
			next := p.SetGrade("A", progress.Grade(4)).SetStatus("A", progress.Regular).SetGrade("A", nil)

			Convey("Then the status survives and the grade is gone", func() {
				So(next.StatusOf("A"), ShouldEqual, progress.Regular)
				_, ok := next.GradeOf("A")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the caller mutates the grade pointer afterwards", func() {
			g := 7.0
			next := p.SetGrade("A", &g)
			g = 1

			Convey("Then the stored grade does not change", func() {
				stored, _ := next.GradeOf("A")
				So(stored, ShouldEqual, 7)
			})
		})
	})
}

func TestStatusParsing(t *testing.T) {
	Convey("Given wire status values", t, func() {
		Convey("Then the three known values parse", func() {
			for _, s := range progress.AllStatuses() {
				parsed, err := progress.ParseStatus(string(s))
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, s)
			}
		})

		Convey("Then anything else is rejected", func() {
			_, err := progress.ParseStatus("aprobada")
			So(errors.Is(err, progress.ErrInvalidStatus), ShouldBeTrue)
		})

		Convey("Then only regular and approved count as progressed", func() {
			So(progress.NotTaken.Progressed(), ShouldBeFalse)
			So(progress.Regular.Progressed(), ShouldBeTrue)
			So(progress.Approved.Progressed(), ShouldBeTrue)
		})
	})
}

func TestValidGrade(t *testing.T) {
	Convey("Given candidate grades", t, func() {
		So(progress.ValidGrade(0), ShouldBeTrue)
		So(progress.ValidGrade(10), ShouldBeTrue)
		So(progress.ValidGrade(7.25), ShouldBeTrue)
		So(progress.ValidGrade(-0.1), ShouldBeFalse)
		So(progress.ValidGrade(10.01), ShouldBeFalse)
		So(progress.ValidGrade(math.NaN()), ShouldBeFalse)
		So(progress.ValidGrade(math.Inf(1)), ShouldBeFalse)
	})
}

func TestEqual(t *testing.T) {
	Convey("Given two maps with the same content", t, func() {
		a := progress.Map{"A": {Status: progress.Regular, Grade: progress.Grade(5)}}
		b := a.Clone()

		So(a.Equal(b), ShouldBeTrue)
		So(a.Equal(b.SetGrade("A", nil)), ShouldBeFalse)
		So(a.Equal(progress.Map{}), ShouldBeFalse)
	})
}
