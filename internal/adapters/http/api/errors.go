package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrInvalidFormat = errors.New("invalid format")
	ErrBodyTooLarge  = errors.New("request body too large")
)
