package eligibility

import (
	"slices"

	"github.com/okian/curriculum/internal/domain/catalog"
)

// Requirement resolves to the list of course codes a rule depends on.
// It is either a whole catalog year or an explicit list of codes.
type Requirement struct {
	year    int
	courses []string
}

// YearRequirement requires every course of year n, except the ruled course.
func YearRequirement(n int) Requirement {
	return Requirement{year: n}
}

// CourseRequirement requires the given course codes.
func CourseRequirement(codes ...string) Requirement {
	return Requirement{courses: slices.Clone(codes)}
}

// resolve expands the requirement against cat, dropping self.
func (r Requirement) resolve(cat *catalog.Catalog, self string) []string {
	if r.year == 0 {
		return slices.Clone(r.courses)
	}
	year := cat.Year(r.year)
	out := make([]string, 0, len(year))
	for _, course := range year {
		if course.Code != self {
			out = append(out, course.Code)
		}
	}
	return out
}

// Rule replaces the declared prerequisites of one course with separate
// requirement sets for enrollment and for the final exam.
type Rule struct {
	Course string
	Enroll Requirement
	Exam   Requirement
}

// DefaultRules returns the named exceptions of the plan of studies.
//
// The integration workshop opens once all of year 2 is at least regular and
// is examined once the rest of year 3 is approved. The capstone thesis opens
// with AI, security and project management at least regular, and is examined
// once the rest of year 5 is approved.
func DefaultRules() []Rule {
	return []Rule{
		{
			Course: catalog.IntegrationWorkshop,
			Enroll: YearRequirement(2),
			Exam:   YearRequirement(3),
		},
		{
			Course: catalog.CapstoneThesis,
			Enroll: CourseRequirement(ArtificialIntelligence, Security, ProjectManagement),
			Exam:   YearRequirement(5),
		},
	}
}

// Courses the capstone thesis depends on for enrollment.
const (
	ArtificialIntelligence = "340423"
	Security               = "340424"
	ProjectManagement      = "340425"
)
