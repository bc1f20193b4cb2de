package api

import "net/http"

// CatalogHandler serves the curriculum.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetCatalog handles GET /catalog requests.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, _ *http.Request) {
	cat, err := h.deps.Catalog()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}
