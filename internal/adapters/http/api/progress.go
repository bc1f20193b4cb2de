package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
)

// maxImportBody caps uploaded progress files.
const maxImportBody = 1 << 20

// ProgressHandler handles whole-progress operations.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleSummary handles GET /sessions/{id}/summary requests.
func (h *ProgressHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleImport handles POST /sessions/{id}/import requests. The body is a
// progress file as produced by export.
func (h *ProgressHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", ErrBodyTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	res, err := h.deps.Import(r.Context(), r.PathValue("id"), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleExport handles GET /sessions/{id}/export requests.
func (h *ProgressHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.deps.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleReset handles DELETE /sessions/{id}/progress requests.
func (h *ProgressHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
