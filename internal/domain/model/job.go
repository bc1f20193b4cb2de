// Package model contains domain models passed between layers.
package model

import "time"

// PersistJob asks the persistence workers to write a session's progress.
// Workers always persist the latest snapshot, so a job only names the session
// and the version that triggered it.
type PersistJob struct {
	SessionID  string    // session whose progress changed
	Operation  string    // mutation that triggered the write, e.g. "set_status"
	Version    uint64    // session version right after the mutation
	EnqueuedAt time.Time // used for queue latency
}
