package service

import "errors"

// Sentinel error kinds returned by Service operations.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrSessionNotFound  = errors.New("session not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrGradeOutOfRange  = errors.New("grade out of range")
	ErrCourseLocked     = errors.New("course is locked by its prerequisites")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidFormat    = errors.New("invalid format")
)
