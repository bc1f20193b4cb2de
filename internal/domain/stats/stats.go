// Package stats aggregates a progress map into the counters shown on the
// progress dashboard.
package stats

import (
	"math"

	"github.com/okian/curriculum/internal/domain/eligibility"
	"github.com/okian/curriculum/internal/domain/progress"
)

// HoursSummary totals the credit-hour load of the catalog.
type HoursSummary struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
}

// YearSummary counts the courses of one catalog year.
type YearSummary struct {
	Year     int `json:"year"`
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Regular  int `json:"regular"`
}

// Summary is the aggregate view of a progress map.
type Summary struct {
	Total      int           `json:"total"`
	Approved   int           `json:"approved"`
	Regular    int           `json:"regular"`
	Pending    int           `json:"pending"`
	Percentage int           `json:"percentage"`
	Enrollable int           `json:"enrollable"`
	ExamReady  int           `json:"exam_ready"`
	Average    *float64      `json:"average"`
	Hours      HoursSummary  `json:"hours"`
	Years      []YearSummary `json:"years"`
	Graduated  bool          `json:"graduated"`
}

// Compute summarizes p against the engine's catalog.
// Only catalog courses are counted; the average uses every recorded grade.
func Compute(engine *eligibility.Engine, p progress.Map) Summary {
	cat := engine.Catalog()
	s := Summary{
		Total:      cat.Len(),
		Enrollable: len(engine.Enrollable(p)),
		ExamReady:  len(engine.ExamReady(p)),
		Average:    Average(p),
		Hours:      HoursSummary{Total: cat.TotalHours()},
	}

	for _, y := range cat.Years() {
		ys := YearSummary{Year: y.Number, Total: len(y.Courses)}
		for _, course := range y.Courses {
			switch p.StatusOf(course.Code) {
			case progress.Approved:
				ys.Approved++
				s.Hours.Approved += course.Hours
			case progress.Regular:
				ys.Regular++
			}
		}
		s.Approved += ys.Approved
		s.Regular += ys.Regular
		s.Years = append(s.Years, ys)
	}

	s.Pending = s.Total - s.Approved - s.Regular
	s.Percentage = Percentage(s.Approved, s.Total)
	s.Graduated = s.Total > 0 && s.Pending == 0
	return s
}

// Percentage returns approved/total as a whole percent, rounding half up.
// A zero total yields 0.
func Percentage(approved, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*approved + total) / (2 * total)
}

// Average returns the mean of every recorded grade rounded half up to two
// decimals, or nil when no grade is recorded.
func Average(p progress.Map) *float64 {
	grades := p.Grades()
	if len(grades) == 0 {
		return nil
	}
	var sum float64
	for _, g := range grades {
		sum += g
	}
	avg := round2(sum / float64(len(grades)))
	return &avg
}

// JustGraduated reports the transition from some pending courses to none.
func JustGraduated(before, after Summary) bool {
	return before.Pending > 0 && after.Pending == 0 && after.Total > 0
}

func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

