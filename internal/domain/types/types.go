// Package types contains the read shapes shared by the session service and
// the HTTP API.
package types

import (
	"time"

	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/eligibility"
	"github.com/okian/curriculum/internal/domain/progress"
	"github.com/okian/curriculum/internal/domain/stats"
)

// CourseView is a catalog course joined with a session's progress and the
// eligibility derived from it.
type CourseView struct {
	catalog.Course

	Status      progress.Status `json:"status"`
	Grade       *float64        `json:"grade"`
	CanEnroll   bool            `json:"can_enroll"`
	CanTakeExam bool            `json:"can_take_exam"`
	Interactive bool            `json:"interactive"`
	Missing     []string        `json:"missing"`
}

// NewCourseView evaluates course against p.
func NewCourseView(engine *eligibility.Engine, p progress.Map, course catalog.Course) CourseView {
	v := CourseView{
		Course:      course,
		Status:      p.StatusOf(course.Code),
		CanEnroll:   engine.CanEnroll(p, course.Code),
		CanTakeExam: engine.CanTakeExam(p, course.Code),
		Interactive: engine.Interactive(p, course.Code),
		Missing:     engine.Missing(p, course.Code),
	}
	if g, ok := p.GradeOf(course.Code); ok {
		v.Grade = &g
	}
	if v.Missing == nil {
		v.Missing = []string{}
	}
	return v
}

// CourseViews evaluates every course in order.
func CourseViews(engine *eligibility.Engine, p progress.Map, courses []catalog.Course) []CourseView {
	out := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		out = append(out, NewCourseView(engine, p, course))
	}
	return out
}

// SessionView describes a progress session.
type SessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Version   uint64    `json:"version"`
}

// MutationResult is returned by single-course edits.
type MutationResult struct {
	Course        CourseView    `json:"course"`
	Summary       stats.Summary `json:"summary"`
	JustGraduated bool          `json:"just_graduated"`
}

// ImportResult is returned when a progress file replaces a session's map.
type ImportResult struct {
	Accepted      int           `json:"accepted"`
	Dropped       int           `json:"dropped"`
	Summary       stats.Summary `json:"summary"`
	JustGraduated bool          `json:"just_graduated"`
}

// CatalogView is the static curriculum.
type CatalogView struct {
	Years      []catalog.Year `json:"years"`
	Total      int            `json:"total"`
	TotalHours int            `json:"total_hours"`
}

// NewCatalogView builds a CatalogView from cat.
func NewCatalogView(cat *catalog.Catalog) CatalogView {
	return CatalogView{
		Years:      cat.Years(),
		Total:      cat.Len(),
		TotalHours: cat.TotalHours(),
	}
}
