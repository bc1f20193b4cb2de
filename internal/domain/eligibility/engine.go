// Package eligibility decides which courses a student may enroll in or sit
// the final exam for, given the catalog and the current progress map.
//
// Every function is a pure read of its inputs. Named exceptions are looked up
// in a flat rule table before the general prerequisite rule applies.
package eligibility

import (
	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/progress"
)

// Mode selects which requirement list of a course is evaluated.
type Mode int

const (
	// Enroll evaluates the requirements to start the coursework.
	Enroll Mode = iota
	// Exam evaluates the requirements to sit the final exam.
	Exam
)

// Engine evaluates eligibility against an immutable catalog.
type Engine struct {
	cat   *catalog.Catalog
	rules map[string]Rule
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRules replaces the default rule table.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = make(map[string]Rule, len(rules))
		for _, r := range rules {
			e.rules[r.Course] = r
		}
	}
}

// New builds an Engine over cat using DefaultRules unless overridden.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{cat: cat}
	WithRules(DefaultRules()...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Requirements returns the course codes a course depends on for mode.
// Ruled courses use their substituted set; others use declared prerequisites.
func (e *Engine) Requirements(code string, mode Mode) []string {
	if r, ok := e.rules[code]; ok {
		if mode == Exam {
			return r.Exam.resolve(e.cat, code)
		}
		return r.Enroll.resolve(e.cat, code)
	}
	course, ok := e.cat.Course(code)
	if !ok {
		return nil
	}
	return course.Prerequisites
}

// CanEnroll reports whether an untaken course has every enrollment
// requirement at least regular.
func (e *Engine) CanEnroll(p progress.Map, code string) bool {
	if !e.cat.Has(code) || p.StatusOf(code) != progress.NotTaken {
		return false
	}
	return e.all(p, e.Requirements(code, Enroll), progress.Status.Progressed)
}

// CanTakeExam reports whether a regular course has every exam requirement
// approved. Ruled courses use their year-based set instead.
func (e *Engine) CanTakeExam(p progress.Map, code string) bool {
	if !e.cat.Has(code) || p.StatusOf(code) != progress.Regular {
		return false
	}
	return e.all(p, e.Requirements(code, Exam), isApproved)
}

// Missing lists the enrollment requirements that are still not taken,
// whatever the course's own status is.
func (e *Engine) Missing(p progress.Map, code string) []string {
	reqs := e.Requirements(code, Enroll)
	out := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if e.statusOf(p, req) == progress.NotTaken {
			out = append(out, req)
		}
	}
	return out
}

// Interactive reports whether the status and grade of a course may be edited.
// Courses already regular or approved stay editable for corrections; others
// need their enrollment requirements at least regular.
func (e *Engine) Interactive(p progress.Map, code string) bool {
	if !e.cat.Has(code) {
		return false
	}
	if p.StatusOf(code).Progressed() {
		return true
	}
	return e.all(p, e.Requirements(code, Enroll), progress.Status.Progressed)
}

// Enrollable returns the courses CanEnroll accepts, in catalog order.
func (e *Engine) Enrollable(p progress.Map) []catalog.Course {
	return e.collect(p, e.CanEnroll)
}

// ExamReady returns the courses CanTakeExam accepts, in catalog order.
func (e *Engine) ExamReady(p progress.Map) []catalog.Course {
	return e.collect(p, e.CanTakeExam)
}

func (e *Engine) collect(p progress.Map, keep func(progress.Map, string) bool) []catalog.Course {
	var out []catalog.Course
	for _, course := range e.cat.Courses() {
		if keep(p, course.Code) {
			out = append(out, course)
		}
	}
	return out
}

// all reports whether every code satisfies ok. Empty lists are satisfied.
func (e *Engine) all(p progress.Map, codes []string, ok func(progress.Status) bool) bool {
	for _, code := range codes {
		if !ok(e.statusOf(p, code)) {
			return false
		}
	}
	return true
}

// statusOf treats codes outside the catalog as not taken.
func (e *Engine) statusOf(p progress.Map, code string) progress.Status {
	if !e.cat.Has(code) {
		return progress.NotTaken
	}
	return p.StatusOf(code)
}

func isApproved(s progress.Status) bool { return s == progress.Approved }
