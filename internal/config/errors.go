package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrUnknownStore is an ErrInvalidConfig naming a backend other than memory, redis or postgres.
	ErrUnknownStore = fmt.Errorf("%w: unknown store", ErrInvalidConfig)
)
