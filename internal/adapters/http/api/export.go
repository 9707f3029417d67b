package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/domain/chart"
)

// ExportHandler serves CSV and chart image downloads. Output is buffered so
// a failed export still gets a JSON error instead of a truncated file.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleTableCSV handles GET /api/sections/{id}/tables/{table}.csv.
func (h *ExportHandler) HandleTableCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.table_csv"
	file := r.PathValue("file")
	tableID, ok := strings.CutSuffix(file, ".csv")
	if !ok || tableID == "" {
		fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	q, err := service.QueryFromValues(r.URL.Query())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	name, err := h.deps.TableCSV(r.Context(), r.PathValue("id"), tableID, q, &buf)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleChart handles GET /api/sections/{id}/charts/{chart}.png and .svg.
// A bare kind parameter (kind=bar) overrides this chart's encoding.
func (h *ExportHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart_image"
	file := r.PathValue("file")
	ext := path.Ext(file)
	chartID := strings.TrimSuffix(file, ext)
	if ext == "" || chartID == "" {
		fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	format, err := chart.ParseFormat(ext)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}

	values := r.URL.Query()
	var bare, scoped []string
	for _, k := range values["kind"] {
		if strings.Contains(k, ":") {
			scoped = append(scoped, k)
		} else {
			bare = append(bare, k)
		}
	}
	values["kind"] = scoped
	q, err := service.QueryFromValues(values)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	for _, raw := range bare {
		k, err := chart.ParseKind(raw)
		if err != nil {
			fail(w, r, Wrap(op, err))
			return
		}
		if q.Kinds == nil {
			q.Kinds = map[string]chart.Kind{}
		}
		q.Kinds[chartID] = k
	}

	a, err := h.deps.Chart(r.Context(), r.PathValue("id"), chartID, q)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	switch format {
	case chart.SVG:
		if err := a.Rasterize(&buf, chart.SVG); err != nil {
			fail(w, r, Wrap(op, err))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		name, err := a.ExportImage(&buf)
		if err != nil {
			fail(w, r, Wrap(op, err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", attachment(name))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
