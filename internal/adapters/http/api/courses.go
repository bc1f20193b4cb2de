package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxEditBody caps single-course edit payloads.
const maxEditBody = 4 << 10

// CourseHandler handles per-course reads and edits.
type CourseHandler struct {
	deps CourseDependencies
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(deps CourseDependencies) *CourseHandler {
	return &CourseHandler{deps: deps}
}

// HandleList handles GET /sessions/{id}/courses?filter= requests.
func (h *CourseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.deps.Courses(r.Context(), r.PathValue("id"), r.URL.Query().Get("filter"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// HandleGet handles GET /sessions/{id}/courses/{code} requests.
func (h *CourseHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	course, err := h.deps.Course(r.Context(), r.PathValue("id"), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// statusRequest mirrors the OpenAPI schema for PUT .../status.
type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus handles PUT /sessions/{id}/courses/{code}/status requests.
func (h *CourseHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing status", ErrBadRequest))
		return
	}

	res, err := h.deps.SetStatus(r.Context(), r.PathValue("id"), r.PathValue("code"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// gradeRequest mirrors the OpenAPI schema for PUT .../grade. A null grade
// clears it; an absent one is rejected.
type gradeRequest struct {
	Grade json.RawMessage `json:"grade"`
}

func (g gradeRequest) value() (*float64, error) {
	raw := bytes.TrimSpace(g.Grade)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing grade", ErrBadRequest)
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: grade must be a number or null", ErrBadRequest)
	}
	return &v, nil
}

// HandleSetGrade handles PUT /sessions/{id}/courses/{code}/grade requests.
func (h *CourseHandler) HandleSetGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	grade, err := req.value()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.SetGrade(r.Context(), r.PathValue("id"), r.PathValue("code"), grade)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEditBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json body", ErrBadRequest)
	}
	return nil
}
