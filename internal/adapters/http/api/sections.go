package api

import (
	"net/http"

	service "github.com/okian/paybench/internal/app"
)

// SectionsHandler serves the navigation list and section pages as JSON.
type SectionsHandler struct {
	deps Dependencies
}

// NewSectionsHandler creates a new sections handler.
func NewSectionsHandler(deps Dependencies) *SectionsHandler {
	return &SectionsHandler{deps: deps}
}

// HandleList handles GET /api/sections.
func (h *SectionsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Sections())
}

// HandlePage handles GET /api/sections/{id}.
func (h *SectionsHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	const op = "api.section_page"
	q, err := service.QueryFromValues(r.URL.Query())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	page, err := h.deps.Page(r.Context(), r.PathValue("id"), q)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}
