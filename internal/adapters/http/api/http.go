// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/curriculum/internal/app"
	"github.com/okian/curriculum/internal/domain/stats"
	"github.com/okian/curriculum/internal/domain/types"
)

// SessionDependencies creates and describes sessions.
type SessionDependencies interface {
	CreateSession(ctx context.Context) (types.SessionView, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
}

// CatalogDependencies exposes the curriculum.
type CatalogDependencies interface {
	Catalog() (types.CatalogView, error)
}

// CourseDependencies reads and edits single courses of a session.
type CourseDependencies interface {
	Courses(ctx context.Context, id, filter string) ([]types.CourseView, error)
	Course(ctx context.Context, id, code string) (types.CourseView, error)
	SetStatus(ctx context.Context, id, code, status string) (types.MutationResult, error)
	SetGrade(ctx context.Context, id, code string, grade *float64) (types.MutationResult, error)
}

// ProgressDependencies works on a session's progress as a whole.
type ProgressDependencies interface {
	Summary(ctx context.Context, id string) (stats.Summary, error)
	Import(ctx context.Context, id string, data []byte) (types.ImportResult, error)
	Export(ctx context.Context, id string) ([]byte, string, error)
	Reset(ctx context.Context, id string) (stats.Summary, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	SessionDependencies
	CatalogDependencies
	CourseDependencies
	ProgressDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	metricsHandler  http.Handler
	statsHandler    *StatsHandler
	catalogHandler  *CatalogHandler
	sessionHandler  *SessionHandler
	courseHandler   *CourseHandler
	progressHandler *ProgressHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		metricsHandler:  NewMetricsHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		catalogHandler:  NewCatalogHandler(deps),
		sessionHandler:  NewSessionHandler(deps),
		courseHandler:   NewCourseHandler(deps),
		progressHandler: NewProgressHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.metricsHandler)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "session"))

	mux.HandleFunc("GET /sessions/{id}/courses", MetricsMiddleware(s.courseHandler.HandleList, "courses"))
	mux.HandleFunc("GET /sessions/{id}/courses/{code}", MetricsMiddleware(s.courseHandler.HandleGet, "course"))
	mux.HandleFunc("PUT /sessions/{id}/courses/{code}/status", MetricsMiddleware(s.courseHandler.HandleSetStatus, "course_status"))
	mux.HandleFunc("PUT /sessions/{id}/courses/{code}/grade", MetricsMiddleware(s.courseHandler.HandleSetGrade, "course_grade"))

	mux.HandleFunc("GET /sessions/{id}/summary", MetricsMiddleware(s.progressHandler.HandleSummary, "summary"))
	mux.HandleFunc("POST /sessions/{id}/import", MetricsMiddleware(s.progressHandler.HandleImport, "import"))
	mux.HandleFunc("GET /sessions/{id}/export", MetricsMiddleware(s.progressHandler.HandleExport, "export"))
	mux.HandleFunc("DELETE /sessions/{id}/progress", MetricsMiddleware(s.progressHandler.HandleReset, "reset"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service error kinds to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", ErrInvalidFormat)
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrGradeOutOfRange),
		errors.Is(err, service.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrCourseLocked):
		writeError(w, http.StatusConflict, "course_locked", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
