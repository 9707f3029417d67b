// Package site renders the dashboard sections as server-side HTML.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/domain/chart"
	"github.com/okian/paybench/pkg/logger"
)

// Error constants
var (
	ErrRender = errors.New("site render failed")
)

// Pages is the part of the service the site renders.
type Pages interface {
	Page(ctx context.Context, id string, q service.Query) (service.Page, error)
}

// Option configures the site handler.
type Option func(*Handler)

// WithDefaultSection sets where / redirects to.
func WithDefaultSection(id string) Option {
	return func(h *Handler) {
		if id != "" {
			h.defaultSection = id
		}
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handler serves the section pages.
type Handler struct {
	pages          Pages
	defaultSection string
	logger         logger.Logger
}

// NewHandler creates a site handler over pages.
func NewHandler(pages Pages, opts ...Option) *Handler {
	h := &Handler{pages: pages, defaultSection: service.SectionOverview}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the site routes to mux.
//
//	GET /               -> redirect to the default section
//	GET /sections/{id}  -> section page
//	GET /static/        -> embedded stylesheet
func Register(_ context.Context, mux *http.ServeMux, pages Pages, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewHandler(pages, opts...)
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.HandleFunc("GET /sections/{id}", h.HandleSection)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleRoot redirects to the default section.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/sections/"+h.defaultSection, http.StatusFound)
}

// HandleSection renders GET /sections/{id}.
func (h *Handler) HandleSection(w http.ResponseWriter, r *http.Request) {
	q, err := service.QueryFromValues(r.URL.Query())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	page, err := h.pages.Page(r.Context(), r.PathValue("id"), q)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "page", pageView{Page: page, Query: q})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		if h.logger != nil {
			h.logger.Error(r.Context(), "template execution failed", logger.String("template", name), logger.Error(err))
		}
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && h.logger != nil {
		h.logger.Error(r.Context(), "section render failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	h.render(w, r, status, "error", errorView{
		Status:  status,
		Title:   http.StatusText(status),
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chart.ErrToggleDisabled):
		return http.StatusConflict
	case errors.Is(err, service.ErrBadQuery), errors.Is(err, chart.ErrUnknownKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
