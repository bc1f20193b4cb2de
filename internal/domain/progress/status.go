package progress

import (
	"fmt"
	"strings"
)

// Status is the progress of a student in a single course.
type Status string

// Status values. They double as the persisted wire format.
const (
	NotTaken Status = "NO_CURSADA"
	Regular  Status = "REGULAR"
	Approved Status = "APROBADA"
)

// AllStatuses returns every valid status in progression order.
func AllStatuses() []Status {
	return []Status{NotTaken, Regular, Approved}
}

// ParseStatus parses a wire value. Matching is exact after trimming spaces.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return NotTaken, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case NotTaken, Regular, Approved:
		return true
	}
	return false
}

// Progressed reports whether the coursework was at least passed.
func (s Status) Progressed() bool {
	return s == Regular || s == Approved
}

// String returns the wire value.
func (s Status) String() string { return string(s) }
