package importer

import "errors"

// Import failure kinds. Callers surface both as a generic invalid format.
var (
	ErrMalformedJSON = errors.New("malformed json")
	ErrInvalidFormat = errors.New("invalid progress format")
)
