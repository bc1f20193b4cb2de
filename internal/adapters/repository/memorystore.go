package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/curriculum/internal/domain/progress"
	"github.com/okian/curriculum/pkg/metrics"
)

const (
	memoryBackend                = "memory"
	defaultMetricsUpdateInterval = 5 * time.Second
)

// MemoryStore keeps progress snapshots in process memory. Every value is
// cloned on the way in and out so callers never share a map with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]progress.Map

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an in-memory store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:              make(map[string]progress.Map),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateStoredSessions(0)
	s.startMetricsUpdater(ctx)
	return s
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (progress.Map, error) {
	defer observe("load", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sessionID string, p progress.Map) error {
	defer observe("save", time.Now())

	if sessionID == "" {
		metrics.RecordStoreError(memoryBackend, "save")
		return ErrInvalidSession
	}

	s.mu.Lock()
	s.sessions[sessionID] = p.Clone()
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	defer observe("delete", time.Now())

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoredSessions(s.Count(ctx))
			}
		}
	}()
}

func observe(operation string, start time.Time) {
	metrics.RecordStoreLatency(memoryBackend, operation, float64(time.Since(start).Microseconds())/1000)
}
