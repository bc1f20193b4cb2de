package progress

import "errors"

// Sentinel error kinds for progress values.
var (
	ErrInvalidStatus   = errors.New("invalid status")
	ErrGradeOutOfRange = errors.New("grade out of range")
)
