// Package progress models the only mutable state of the system: a map from
// course code to the student's status and grade in that course.
//
// Map values are treated as copy-on-write. Every mutation returns a fresh
// Map and leaves the receiver untouched, so readers holding an older
// snapshot keep a consistent view.
package progress

import (
	"maps"
	"math"
	"slices"
)

// Grade bounds accepted by ValidGrade.
const (
	MinGrade = 0
	MaxGrade = 10
)

// Entry is the recorded progress for one course.
type Entry struct {
	Status Status   `json:"estado"`
	Grade  *float64 `json:"nota"`
}

// Map holds entries keyed by course code. Absent codes are not taken.
type Map map[string]Entry

// StatusOf returns the status for code, or NotTaken when absent.
func (m Map) StatusOf(code string) Status {
	if e, ok := m[code]; ok && e.Status != "" {
		return e.Status
	}
	return NotTaken
}

// GradeOf returns the grade for code. ok is false when no grade is set.
func (m Map) GradeOf(code string) (grade float64, ok bool) {
	e, found := m[code]
	if !found || e.Grade == nil {
		return 0, false
	}
	return *e.Grade, true
}

// SetStatus returns a copy of m with code's status replaced.
// Setting NotTaken clears the grade; other statuses keep it.
func (m Map) SetStatus(code string, s Status) Map {
	out := m.Clone()
	e := out[code]
	e.Status = s
	if s == NotTaken {
		e.Grade = nil
	}
	out[code] = e
	return out
}

// SetGrade returns a copy of m with code's grade replaced. A nil grade clears
// it. Missing entries are created as NotTaken. The value is not range checked
// here; callers validate with ValidGrade first.
func (m Map) SetGrade(code string, grade *float64) Map {
	out := m.Clone()
	e, ok := out[code]
	if !ok || e.Status == "" {
		e.Status = NotTaken
	}
	e.Grade = cloneGrade(grade)
	out[code] = e
	return out
}

// Clone returns a deep copy of m. A nil map clones to an empty one.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for code, e := range m {
		e.Grade = cloneGrade(e.Grade)
		out[code] = e
	}
	return out
}

// Equal reports whether both maps hold the same entries.
func (m Map) Equal(other Map) bool {
	return maps.EqualFunc(m, other, func(a, b Entry) bool {
		if a.Status != b.Status {
			return false
		}
		if a.Grade == nil || b.Grade == nil {
			return a.Grade == nil && b.Grade == nil
		}
		return *a.Grade == *b.Grade
	})
}

// Grades returns every recorded grade ordered by course code.
func (m Map) Grades() []float64 {
	out := make([]float64, 0, len(m))
	for _, code := range slices.Sorted(maps.Keys(m)) {
		if g := m[code].Grade; g != nil {
			out = append(out, *g)
		}
	}
	return out
}

// ValidGrade reports whether g is finite and within [MinGrade, MaxGrade].
func ValidGrade(g float64) bool {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return false
	}
	return g >= MinGrade && g <= MaxGrade
}

// Grade is a convenience constructor for optional grades.
func Grade(g float64) *float64 { return &g }

func cloneGrade(g *float64) *float64 {
	if g == nil {
		return nil
	}
	v := *g
	return &v
}
