// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/domain/chart"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Sections() []service.Section
	Page(ctx context.Context, id string, q service.Query) (service.Page, error)
	Chart(ctx context.Context, section, chartID string, q service.Query) (*chart.Adapter, error)
	TableCSV(ctx context.Context, section, tableID string, q service.Query, w io.Writer) (string, error)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sectionsHandler *SectionsHandler
	exportHandler   *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sectionsHandler: NewSectionsHandler(deps),
		exportHandler:   NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /api/sections", MetricsMiddleware(s.sectionsHandler.HandleList, "sections"))
	mux.HandleFunc("GET /api/sections/{id}", MetricsMiddleware(s.sectionsHandler.HandlePage, "section"))
	mux.HandleFunc("GET /api/sections/{id}/tables/{file}", MetricsMiddleware(s.exportHandler.HandleTableCSV, "table_csv"))
	mux.HandleFunc("GET /api/sections/{id}/charts/{file}", MetricsMiddleware(s.exportHandler.HandleChart, "chart_image"))
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

// fail writes err with the status it maps to.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	writeError(w, r, status, code, err)
}
