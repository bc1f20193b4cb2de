// Package config defines service configuration and its loading hooks.
//
// Values are layered: defaults from New, then an optional YAML file named by
// CURRICULUM_CONFIG, then CURRICULUM_* environment variables.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Store backends accepted by Config.Store.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at a YAML plan replacing the embedded one.
	CatalogPath string `koanf:"catalog_path"`

	// Store selects the progress backend: memory, redis or postgres.
	Store string `koanf:"store"`

	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`

	PostgresURL string `koanf:"postgres_url"`

	// WorkerCount sets the number of persistence workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory persistence queue.
	QueueSize int `koanf:"queue_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":9080",
		Store:       StoreMemory,
		RedisAddr:   "localhost:6379",
		WorkerCount: runtime.NumCPU(),
		QueueSize:   1024,
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.RedisTTLSeconds < 0:
		return fmt.Errorf("%w: redis_ttl_seconds must not be negative", ErrInvalidConfig)
	}

	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("%w: postgres_url is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownStore, c.Store)
	}
	return nil
}
