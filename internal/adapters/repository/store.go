// Package repository defines where session progress is persisted.
//
// The session service keeps the working copy in memory and writes behind
// through a Store. Implementations live in this package (memory) and in the
// redisstore and postgres subpackages.
package repository

import (
	"context"

	"github.com/okian/curriculum/internal/domain/progress"
)

// Store provides durable access to per-session progress maps.
type Store interface {
	// Load returns the stored progress of a session.
	// Returns ErrNotFound if the session was never saved.
	Load(ctx context.Context, sessionID string) (progress.Map, error)

	// Save replaces the stored progress of a session.
	Save(ctx context.Context, sessionID string, p progress.Map) error

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int
}
