// Package catalog holds the immutable curriculum graph: courses grouped by
// year and the prerequisite codes each course declares.
//
// A Catalog is validated once at construction and never mutated afterwards,
// so it can be shared by every session without locking.
package catalog

import (
	"fmt"
	"slices"
)

// ScheduleType tells when a course is dictated during the academic year.
type ScheduleType string

// Known schedule types. Values match the persisted plan format.
const (
	Annual     ScheduleType = "Anual"
	FirstTerm  ScheduleType = "Cuatrim C1"
	SecondTerm ScheduleType = "Cuatrim C2"
)

// Valid reports whether s is one of the known schedule types.
func (s ScheduleType) Valid() bool {
	switch s {
	case Annual, FirstTerm, SecondTerm:
		return true
	}
	return false
}

// Course is a single curriculum entry.
type Course struct {
	Code          string       `json:"code" yaml:"code"`
	Name          string       `json:"name" yaml:"name"`
	Schedule      ScheduleType `json:"schedule" yaml:"schedule"`
	Hours         int          `json:"hours" yaml:"hours"`
	Prerequisites []string     `json:"prerequisites" yaml:"prerequisites"`

	// Year is filled in by New from the enclosing Year group.
	Year int `json:"year" yaml:"-"`
}

// Year groups the courses dictated in one academic year.
type Year struct {
	Number  int      `json:"year" yaml:"year"`
	Courses []Course `json:"courses" yaml:"courses"`
}

// Catalog is the validated, read-only curriculum.
type Catalog struct {
	years  []Year
	byCode map[string]int // code -> index into flat
	flat   []Course
}

// New validates years and builds a Catalog.
//
// Course codes must be unique across the whole catalog and every declared
// prerequisite must reference a course of the same catalog.
func New(years []Year, opts ...Option) (*Catalog, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{
		years:  make([]Year, 0, len(years)),
		byCode: make(map[string]int),
	}

	seenYears := make(map[int]struct{}, len(years))
	for _, y := range years {
		if _, dup := seenYears[y.Number]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateYear, y.Number)
		}
		seenYears[y.Number] = struct{}{}

		group := Year{Number: y.Number, Courses: make([]Course, 0, len(y.Courses))}
		for _, course := range y.Courses {
			if err := validateCourse(course); err != nil {
				return nil, err
			}
			if _, dup := c.byCode[course.Code]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateCourse, course.Code)
			}
			course.Year = y.Number
			course.Prerequisites = slices.Clone(course.Prerequisites)
			c.byCode[course.Code] = len(c.flat)
			c.flat = append(c.flat, course)
			group.Courses = append(group.Courses, course)
		}
		c.years = append(c.years, group)
	}

	for _, course := range c.flat {
		for _, pre := range course.Prerequisites {
			if _, ok := c.byCode[pre]; !ok {
				return nil, fmt.Errorf("%w: %s requires %s", ErrUnknownPrerequisite, course.Code, pre)
			}
			if pre == course.Code {
				return nil, fmt.Errorf("%w: %s requires itself", ErrInvalidCourse, course.Code)
			}
		}
	}

	for _, code := range o.openPrerequisites {
		course, ok := c.Course(code)
		if !ok {
			continue
		}
		if len(course.Prerequisites) > 0 {
			return nil, fmt.Errorf("%w: %s is ruled separately and must not declare prerequisites", ErrInvalidCourse, code)
		}
	}

	return c, nil
}

func validateCourse(course Course) error {
	switch {
	case course.Code == "":
		return fmt.Errorf("%w: empty code", ErrInvalidCourse)
	case course.Hours < 0:
		return fmt.Errorf("%w: %s has negative hours", ErrInvalidCourse, course.Code)
	case !course.Schedule.Valid():
		return fmt.Errorf("%w: %s has unknown schedule %q", ErrInvalidCourse, course.Code, course.Schedule)
	}
	return nil
}

// Courses returns every course in catalog order (year by year).
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.flat))
	for i, course := range c.flat {
		out[i] = cloneCourse(course)
	}
	return out
}

// Years returns the year groups in catalog order.
func (c *Catalog) Years() []Year {
	out := make([]Year, len(c.years))
	for i, y := range c.years {
		out[i] = Year{Number: y.Number, Courses: make([]Course, len(y.Courses))}
		for j, course := range y.Courses {
			out[i].Courses[j] = cloneCourse(course)
		}
	}
	return out
}

// Year returns the courses of year n, or nil when the year does not exist.
func (c *Catalog) Year(n int) []Course {
	for _, y := range c.years {
		if y.Number != n {
			continue
		}
		out := make([]Course, len(y.Courses))
		for i, course := range y.Courses {
			out[i] = cloneCourse(course)
		}
		return out
	}
	return nil
}

// Course looks a course up by code.
func (c *Catalog) Course(code string) (Course, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Course{}, false
	}
	return cloneCourse(c.flat[i]), true
}

// Has reports whether code is a catalog course.
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Len returns the number of courses.
func (c *Catalog) Len() int { return len(c.flat) }

// TotalHours sums the credit-hour load of every course.
func (c *Catalog) TotalHours() int {
	total := 0
	for _, course := range c.flat {
		total += course.Hours
	}
	return total
}

func cloneCourse(course Course) Course {
	course.Prerequisites = slices.Clone(course.Prerequisites)
	return course
}
