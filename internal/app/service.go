// Package service provides the session service behind the HTTP API: it owns
// the per-session progress maps, evaluates them with the eligibility engine
// and writes them behind to a repository.Store through a worker pool.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/curriculum/internal/adapters/mq/queue"
	"github.com/okian/curriculum/internal/adapters/mq/worker"
	"github.com/okian/curriculum/internal/adapters/repository"
	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/eligibility"
	"github.com/okian/curriculum/internal/domain/importer"
	"github.com/okian/curriculum/internal/domain/model"
	"github.com/okian/curriculum/internal/domain/progress"
	"github.com/okian/curriculum/internal/domain/stats"
	"github.com/okian/curriculum/internal/domain/types"
	"github.com/okian/curriculum/pkg/logger"
	"github.com/okian/curriculum/pkg/metrics"
)

// Mutation names used for metrics and persistence jobs.
const (
	opCreate    = "create"
	opSetStatus = "set_status"
	opSetGrade  = "set_grade"
	opImport    = "import"
	opReset     = "reset"
)

// session is the working copy of one student's progress.
type session struct {
	id        string
	createdAt time.Time

	mu       sync.Mutex
	progress progress.Map
	version  uint64

	// persistMu serializes writes to the store; persisted is the last
	// version written and is guarded by persistMu.
	persistMu sync.Mutex
	persisted uint64
}

func (s *session) snapshot() (progress.Map, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress, s.version
}

// persistAdapter adapts the Service to worker.Persister.
type persistAdapter struct {
	svc *Service
}

func (a persistAdapter) Persist(ctx context.Context, job worker.Job) error {
	return a.svc.persist(ctx, job)
}

// Service implements the API dependencies for progress sessions.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog   *catalog.Catalog
	engine    *eligibility.Engine
	validator *importer.Validator
	store     repository.Store
	ownsStore bool
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	sessionsMu sync.RWMutex
	sessions   map[string]*session

	// Configuration
	workerCount int
	queueSize   int
	rules       []eligibility.Rule
	customRules bool
	now         func() time.Time

	// State
	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:    make(map[string]*session),
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the catalog, prepares the store and starts the persistence
// workers. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progress service...")

	if s.catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("load default catalog: %w", err)
		}
		s.catalog = cat
	}

	var engineOpts []eligibility.Option
	if s.customRules {
		engineOpts = append(engineOpts, eligibility.WithRules(s.rules...))
	}
	s.engine = eligibility.New(s.catalog, engineOpts...)
	s.validator = importer.NewValidator(s.catalog)

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory store")
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, persistAdapter{svc: s},
		worker.WithPoolLogger(s.logger))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "progress service started",
		logger.Int("courses", s.catalog.Len()),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Stop drains pending writes and shuts the workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping progress service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "progress service stopped")
	return errors.Join(errs...)
}

// Catalog returns the curriculum.
func (s *Service) Catalog() (types.CatalogView, error) {
	if err := s.ready(); err != nil {
		return types.CatalogView{}, err
	}
	return types.NewCatalogView(s.catalog), nil
}

// CreateSession starts an empty progress map under a fresh id.
func (s *Service) CreateSession(ctx context.Context) (types.SessionView, error) {
	if err := s.ready(); err != nil {
		return types.SessionView{}, err
	}

	sess := &session{
		id:        uuid.NewString(),
		createdAt: s.now().UTC(),
		progress:  progress.Map{},
		version:   1,
	}

	s.sessionsMu.Lock()
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	s.sessionsMu.Unlock()

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(active)
	s.enqueue(ctx, sess.id, opCreate, sess.version)

	s.logger.Debug(ctx, "session created", logger.String("session_id", sess.id))
	return types.SessionView{ID: sess.id, CreatedAt: sess.createdAt, Version: sess.version}, nil
}

// Session describes an existing session.
func (s *Service) Session(ctx context.Context, id string) (types.SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	_, version := sess.snapshot()
	return types.SessionView{ID: sess.id, CreatedAt: sess.createdAt, Version: version}, nil
}

// Progress returns a copy of the session's progress map.
func (s *Service) Progress(ctx context.Context, id string) (progress.Map, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	p, _ := sess.snapshot()
	return p.Clone(), nil
}

// Courses lists the catalog courses matching filter with their eligibility.
func (s *Service) Courses(ctx context.Context, id, filter string) ([]types.CourseView, error) {
	f, err := eligibility.ParseFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	p, _ := sess.snapshot()

	defer observeEligibility(time.Now())
	return types.CourseViews(s.engine, p, s.engine.Filter(p, f)), nil
}

// Course returns one course with its eligibility.
func (s *Service) Course(ctx context.Context, id, code string) (types.CourseView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.CourseView{}, err
	}
	course, ok := s.catalog.Course(code)
	if !ok {
		return types.CourseView{}, fmt.Errorf("%w: %s", ErrCourseNotFound, code)
	}
	p, _ := sess.snapshot()

	defer observeEligibility(time.Now())
	return types.NewCourseView(s.engine, p, course), nil
}

// Summary aggregates the session's progress.
func (s *Service) Summary(ctx context.Context, id string) (stats.Summary, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return stats.Summary{}, err
	}
	p, _ := sess.snapshot()

	defer observeEligibility(time.Now())
	return stats.Compute(s.engine, p), nil
}

// SetStatus changes a course's status. Setting NO_CURSADA clears the grade.
func (s *Service) SetStatus(ctx context.Context, id, code, status string) (types.MutationResult, error) {
	st, err := progress.ParseStatus(status)
	if err != nil {
		metrics.RecordProgressMutation(opSetStatus, "invalid")
		return types.MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.editCourse(ctx, id, code, opSetStatus, func(p progress.Map) progress.Map {
		return p.SetStatus(code, st)
	})
}

// SetGrade records or, with a nil grade, clears a course's grade.
func (s *Service) SetGrade(ctx context.Context, id, code string, grade *float64) (types.MutationResult, error) {
	if grade != nil && !progress.ValidGrade(*grade) {
		metrics.RecordProgressMutation(opSetGrade, "invalid")
		return types.MutationResult{}, fmt.Errorf("%w: %v", ErrGradeOutOfRange, *grade)
	}
	return s.editCourse(ctx, id, code, opSetGrade, func(p progress.Map) progress.Map {
		return p.SetGrade(code, grade)
	})
}

func (s *Service) editCourse(ctx context.Context, id, code, op string, apply func(progress.Map) progress.Map) (types.MutationResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.MutationResult{}, err
	}
	course, ok := s.catalog.Course(code)
	if !ok {
		metrics.RecordProgressMutation(op, "not_found")
		return types.MutationResult{}, fmt.Errorf("%w: %s", ErrCourseNotFound, code)
	}

	sess.mu.Lock()
	if !s.engine.Interactive(sess.progress, code) {
		sess.mu.Unlock()
		metrics.RecordProgressMutation(op, "locked")
		return types.MutationResult{}, fmt.Errorf("%w: %s", ErrCourseLocked, code)
	}
	before := stats.Compute(s.engine, sess.progress)
	sess.progress = apply(sess.progress)
	sess.version++
	p, version := sess.progress, sess.version
	sess.mu.Unlock()

	after := stats.Compute(s.engine, p)
	res := types.MutationResult{
		Course:        types.NewCourseView(s.engine, p, course),
		Summary:       after,
		JustGraduated: stats.JustGraduated(before, after),
	}
	s.committed(ctx, sess.id, op, version, res.JustGraduated)
	return res, nil
}

// Import replaces the session's progress with a validated progress file.
// Rejected files leave the session untouched.
func (s *Service) Import(ctx context.Context, id string, data []byte) (types.ImportResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.ImportResult{}, err
	}

	res, err := s.validator.Decode(data)
	if err != nil {
		metrics.RecordImport("rejected")
		s.logger.Debug(ctx, "import rejected", logger.String("session_id", id), logger.Error(err))
		return types.ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	sess.mu.Lock()
	before := stats.Compute(s.engine, sess.progress)
	sess.progress = res.Progress
	sess.version++
	version := sess.version
	sess.mu.Unlock()

	after := stats.Compute(s.engine, res.Progress)
	out := types.ImportResult{
		Accepted:      res.Accepted,
		Dropped:       res.Dropped,
		Summary:       after,
		JustGraduated: stats.JustGraduated(before, after),
	}
	metrics.RecordImport("accepted")
	s.committed(ctx, sess.id, opImport, version, out.JustGraduated)

	s.logger.Info(ctx, "progress imported",
		logger.String("session_id", id),
		logger.Int("accepted", res.Accepted),
		logger.Int("dropped", res.Dropped),
	)
	return out, nil
}

// Export encodes the session's progress and suggests a file name.
func (s *Service) Export(ctx context.Context, id string) ([]byte, string, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, "", err
	}
	p, _ := sess.snapshot()

	data, err := importer.Export(p)
	if err != nil {
		return nil, "", fmt.Errorf("export %s: %w", id, err)
	}
	return data, importer.Filename(s.now()), nil
}

// Reset clears the session's progress.
func (s *Service) Reset(ctx context.Context, id string) (stats.Summary, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return stats.Summary{}, err
	}

	sess.mu.Lock()
	sess.progress = progress.Map{}
	sess.version++
	version := sess.version
	sess.mu.Unlock()

	s.committed(ctx, sess.id, opReset, version, false)
	return stats.Compute(s.engine, progress.Map{}), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		s.sessionsMu.RLock()
		active := len(s.sessions)
		s.sessionsMu.RUnlock()

		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		out["courses"] = s.catalog.Len()
		out["activeSessions"] = active
		out["storedSessions"] = stored
		out["queueLength"] = queueLen

		metrics.UpdateActiveSessions(active)
		metrics.UpdateStoredSessions(stored)
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return out
}

// Flush writes a session's latest snapshot synchronously.
func (s *Service) Flush(ctx context.Context, id string) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	_, version := sess.snapshot()
	return s.persist(ctx, worker.Job{SessionID: id, Operation: "flush", Version: version})
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// session returns the cached session or loads it from the store.
func (s *Service) session(ctx context.Context, id string) (*session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	s.sessionsMu.RLock()
	sess, ok := s.sessions[id]
	s.sessionsMu.RUnlock()
	if ok {
		return sess, nil
	}

	p, err := s.store.Load(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess = &session{id: id, createdAt: s.now().UTC(), progress: p}
	s.sessions[id] = sess
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session loaded", logger.String("session_id", id), logger.Int("entries", len(p)))
	return sess, nil
}

func (s *Service) committed(ctx context.Context, id, op string, version uint64, graduated bool) {
	metrics.RecordProgressMutation(op, "ok")
	if graduated {
		metrics.RecordGraduation()
		s.logger.Info(ctx, "all courses approved", logger.String("session_id", id))
	}
	s.enqueue(ctx, id, op, version)
}

// enqueue schedules a write. When the queue rejects the job the snapshot
// is written inline so no mutation is lost.
func (s *Service) enqueue(ctx context.Context, id, op string, version uint64) {
	job := model.PersistJob{SessionID: id, Operation: op, Version: version}
	err := s.queue.Enqueue(ctx, job)
	if err == nil {
		return
	}

	s.logger.Warn(ctx, "persistence queue rejected job, writing inline",
		logger.String("session_id", id),
		logger.String("operation", op),
		logger.Error(err),
	)
	if err := s.persist(context.WithoutCancel(ctx), job); err != nil {
		metrics.RecordErrorByComponent("service", "persist")
		s.logger.Error(ctx, "inline persist failed", logger.String("session_id", id), logger.Error(err))
	}
}

// persist writes the latest snapshot of a session. Jobs whose version is
// already covered by an earlier write are skipped.
func (s *Service) persist(ctx context.Context, job worker.Job) error {
	s.sessionsMu.RLock()
	sess, ok := s.sessions[job.SessionID]
	s.sessionsMu.RUnlock()
	if !ok {
		return nil
	}

	sess.persistMu.Lock()
	defer sess.persistMu.Unlock()

	if sess.persisted >= job.Version {
		return nil
	}
	p, version := sess.snapshot()
	if err := s.store.Save(ctx, sess.id, p); err != nil {
		return fmt.Errorf("save session %s: %w", sess.id, err)
	}
	sess.persisted = version
	return nil
}

func observeEligibility(start time.Time) {
	metrics.RecordEligibilityLatency(float64(time.Since(start).Microseconds()) / 1000)
}
