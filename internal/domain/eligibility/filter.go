package eligibility

import (
	"fmt"
	"strings"

	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/progress"
)

// Filter narrows a course listing.
type Filter string

// Listing filters.
const (
	FilterAll        Filter = "all"
	FilterApproved   Filter = "approved"
	FilterEnrollable Filter = "enrollable"
	FilterPending    Filter = "pending"
)

// ParseFilter parses a filter name. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterApproved, FilterEnrollable, FilterPending:
		return f, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q", s)
	}
}

// Filter returns the catalog courses matching f, in catalog order.
// Pending means not taken; enrollable uses CanEnroll.
func (e *Engine) Filter(p progress.Map, f Filter) []catalog.Course {
	switch f {
	case FilterApproved:
		return e.collect(p, func(p progress.Map, code string) bool {
			return p.StatusOf(code) == progress.Approved
		})
	case FilterEnrollable:
		return e.Enrollable(p)
	case FilterPending:
		return e.collect(p, func(p progress.Map, code string) bool {
			return p.StatusOf(code) == progress.NotTaken
		})
	default:
		return e.cat.Courses()
	}
}
