package catalog

import "errors"

// Sentinel error kinds for catalog validation.
var (
	ErrDuplicateCourse     = errors.New("duplicate course code")
	ErrDuplicateYear       = errors.New("duplicate year")
	ErrUnknownPrerequisite = errors.New("unknown prerequisite")
	ErrInvalidCourse       = errors.New("invalid course")
	ErrLoadPlan            = errors.New("load plan failed")
)
