// Package postgres persists session progress in PostgreSQL through pgx.
//
// A session is a row in progress_sessions; its entries live in
// session_progress, one row per course. A session with no entries is a
// valid, empty progress map.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/curriculum/internal/adapters/repository"
	"github.com/okian/curriculum/internal/domain/progress"
	"github.com/okian/curriculum/pkg/metrics"
)

const backend = "postgres"

// ErrConnection wraps failures to reach the database.
var ErrConnection = errors.New("postgres: connection failed")

// Querier is the subset of *pgxpool.Pool used by Store.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ════════════════════════════════════════════════════════════════════════════
// CONNECTION
// ════════════════════════════════════════════════════════════════════════════

// Connect opens a pool from a connection URL and pings it.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse url: %v", ErrConnection, err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create pool: %v", ErrConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping: %v", ErrConnection, err)
	}
	return pool, nil
}

// ════════════════════════════════════════════════════════════════════════════
// STORE
// ════════════════════════════════════════════════════════════════════════════

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db Querier
}

var _ repository.Store = (*Store)(nil)

// New wraps a pool or any compatible querier.
func New(db Querier) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, migrationUp); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

const (
	sqlSessionExists = `SELECT EXISTS(SELECT 1 FROM progress_sessions WHERE session_id = $1)`
	sqlLoadEntries   = `SELECT course_code, status, grade FROM session_progress WHERE session_id = $1 ORDER BY course_code`
	sqlUpsertSession = `INSERT INTO progress_sessions (session_id, updated_at) VALUES ($1, NOW())
		ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW()`
	sqlClearEntries = `DELETE FROM session_progress WHERE session_id = $1`
	sqlInsertEntry  = `INSERT INTO session_progress (session_id, course_code, status, grade) VALUES ($1, $2, $3, $4)`
	sqlDelete       = `DELETE FROM progress_sessions WHERE session_id = $1`
	sqlCount        = `SELECT COUNT(*) FROM progress_sessions`
)

// Load implements repository.Store.
func (s *Store) Load(ctx context.Context, sessionID string) (progress.Map, error) {
	defer observe("load", time.Now())

	var exists bool
	if err := s.db.QueryRow(ctx, sqlSessionExists, sessionID).Scan(&exists); err != nil {
		metrics.RecordStoreError(backend, "load")
		return nil, fmt.Errorf("failed to look up session %s: %w", sessionID, err)
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	rows, err := s.db.Query(ctx, sqlLoadEntries, sessionID)
	if err != nil {
		metrics.RecordStoreError(backend, "load")
		return nil, fmt.Errorf("failed to load progress %s: %w", sessionID, err)
	}
	defer rows.Close()

	p := progress.Map{}
	for rows.Next() {
		var (
			code   string
			status string
			grade  *float64
		)
		if err := rows.Scan(&code, &status, &grade); err != nil {
			metrics.RecordStoreError(backend, "load")
			return nil, fmt.Errorf("failed to scan progress %s: %w", sessionID, err)
		}
		p[code] = progress.Entry{Status: progress.Status(status), Grade: grade}
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError(backend, "load")
		return nil, fmt.Errorf("failed to read progress %s: %w", sessionID, err)
	}
	return p, nil
}

// Save implements repository.Store. The session's rows are replaced in a
// single transaction.
func (s *Store) Save(ctx context.Context, sessionID string, p progress.Map) (err error) {
	defer observe("save", time.Now())

	if sessionID == "" {
		return repository.ErrInvalidSession
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		metrics.RecordStoreError(backend, "save")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			metrics.RecordStoreError(backend, "save")
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, sqlUpsertSession, sessionID); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", sessionID, err)
	}
	if _, err = tx.Exec(ctx, sqlClearEntries, sessionID); err != nil {
		return fmt.Errorf("failed to clear progress %s: %w", sessionID, err)
	}

	codes := make([]string, 0, len(p))
	for code := range p {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		e := p[code]
		status := e.Status
		if status == "" {
			status = progress.NotTaken
		}
		if _, err = tx.Exec(ctx, sqlInsertEntry, sessionID, code, string(status), e.Grade); err != nil {
			return fmt.Errorf("failed to insert %s/%s: %w", sessionID, code, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit progress %s: %w", sessionID, err)
	}
	return nil
}

// Delete implements repository.Store. Entries cascade.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	defer observe("delete", time.Now())

	if _, err := s.db.Exec(ctx, sqlDelete, sessionID); err != nil {
		metrics.RecordStoreError(backend, "delete")
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// Count implements repository.Store. Errors are recorded and yield 0.
func (s *Store) Count(ctx context.Context) int {
	defer observe("count", time.Now())

	var n int64
	if err := s.db.QueryRow(ctx, sqlCount).Scan(&n); err != nil {
		metrics.RecordStoreError(backend, "count")
		return 0
	}
	return int(n)
}

func observe(operation string, start time.Time) {
	metrics.RecordStoreLatency(backend, operation, float64(time.Since(start).Microseconds())/1000)
}
