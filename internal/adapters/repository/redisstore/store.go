// Package redisstore persists session progress in Redis, one JSON document
// per session under the "progress:" key prefix.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/curriculum/internal/adapters/repository"
	"github.com/okian/curriculum/internal/domain/progress"
	"github.com/okian/curriculum/pkg/metrics"
)

const (
	backend = "redis"

	// KeyPrefix namespaces progress documents.
	KeyPrefix = "progress:"

	scanBatch = 256
)

// ErrSerialization is returned when a stored document cannot be decoded.
var ErrSerialization = errors.New("redisstore: serialization failed")

// Config holds Redis connection configuration.
type Config struct {
	Addr         string
	Password     string
	DB           int
	TTL          time.Duration // zero keeps documents forever
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	}
}

// Store implements repository.Store on Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.Store = (*Store)(nil)

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: failed to ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Key returns the Redis key holding a session's progress.
func Key(sessionID string) string { return KeyPrefix + sessionID }

// Load implements repository.Store.
func (s *Store) Load(ctx context.Context, sessionID string) (progress.Map, error) {
	defer observe("load", time.Now())

	data, err := s.client.Get(ctx, Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError(backend, "load")
		return nil, fmt.Errorf("redisstore: failed to get %s: %w", sessionID, err)
	}

	var p progress.Map
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.RecordStoreError(backend, "load")
		return nil, fmt.Errorf("%w: %s: %v", ErrSerialization, sessionID, err)
	}
	if p == nil {
		p = progress.Map{}
	}
	return p, nil
}

// Save implements repository.Store. The TTL, when set, is refreshed on
// every save.
func (s *Store) Save(ctx context.Context, sessionID string, p progress.Map) error {
	defer observe("save", time.Now())

	if sessionID == "" {
		return repository.ErrInvalidSession
	}
	if p == nil {
		p = progress.Map{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		metrics.RecordStoreError(backend, "save")
		return fmt.Errorf("%w: %s: %v", ErrSerialization, sessionID, err)
	}
	if err := s.client.Set(ctx, Key(sessionID), data, s.ttl).Err(); err != nil {
		metrics.RecordStoreError(backend, "save")
		return fmt.Errorf("redisstore: failed to set %s: %w", sessionID, err)
	}
	return nil
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	defer observe("delete", time.Now())

	if err := s.client.Del(ctx, Key(sessionID)).Err(); err != nil {
		metrics.RecordStoreError(backend, "delete")
		return fmt.Errorf("redisstore: failed to delete %s: %w", sessionID, err)
	}
	return nil
}

// Count implements repository.Store by scanning the key prefix. Errors are
// recorded and yield the keys counted so far.
func (s *Store) Count(ctx context.Context) int {
	defer observe("count", time.Now())

	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		metrics.RecordStoreError(backend, "count")
	}
	return n
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func observe(operation string, start time.Time) {
	metrics.RecordStoreLatency(backend, operation, float64(time.Since(start).Microseconds())/1000)
}
