// Package service assembles section pages, charts and exports from the
// survey snapshot. It backs both the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/paybench/internal/adapters/repository"
	"github.com/okian/paybench/internal/domain/chart"
	"github.com/okian/paybench/internal/domain/dataset"
	"github.com/okian/paybench/pkg/logger"
	"github.com/okian/paybench/pkg/metrics"
)

// Service renders pages on demand. Every call builds fresh table engines and
// chart adapters, so concurrent requests share nothing but the snapshot.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	loadOpts []repository.Option

	palette     []string
	chartWidth  int
	chartHeight int
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects an already loaded snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLoadOptions is passed to repository.Load when no store was injected.
func WithLoadOptions(opts ...repository.Option) Option {
	return func(s *Service) {
		s.loadOpts = append(s.loadOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPalette sets the chart colour cycle.
func WithPalette(palette []string) Option {
	return func(s *Service) {
		if len(palette) > 0 {
			s.palette = append([]string(nil), palette...)
		}
	}
}

// WithChartSize sets the raster size of exported charts.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 {
			s.chartWidth = width
		}
		if height > 0 {
			s.chartHeight = height
		}
	}
}

// WithClock overrides the date used in export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		palette:     chart.DefaultPalette,
		chartWidth:  chart.DefaultWidth,
		chartHeight: chart.DefaultHeight,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the snapshot unless a store was injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting paybench service...")

	if s.store == nil {
		store, err := repository.Load(ctx, s.loadOpts...)
		if err != nil {
			s.logger.Error(ctx, "failed to load survey snapshot", logger.Error(err))
			return err
		}
		s.store = store
	}

	snap := s.store.Snapshot(ctx)
	s.started = true
	s.logger.Info(ctx, "paybench service started",
		logger.String("version", snap.Version),
		logger.Int("organisations", len(snap.Organisations)),
		logger.Int("roleRates", len(snap.RoleRates)),
	)
	return nil
}

// Stop marks the service stopped. The snapshot is kept for a later Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "paybench service stopped")
}

// Sections lists the report sections in navigation order.
func (s *Service) Sections() []Section {
	out := make([]Section, len(sections))
	for i, def := range sections {
		out[i] = def.Section
	}
	return out
}

// Nav returns the navigation with the given section marked active.
func (s *Service) Nav(active string) []NavItem {
	nav := make([]NavItem, len(sections))
	for i, def := range sections {
		nav[i] = NavItem{ID: def.ID, Title: def.Title, Path: def.Path, Active: def.ID == active}
	}
	return nav
}

// Snapshot returns the loaded survey snapshot.
func (s *Service) Snapshot(ctx context.Context) (*dataset.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.Snapshot(ctx), nil
}

func (s *Service) content(ctx context.Context, id string, q Query) (sectionDef, content, *dataset.Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return sectionDef{}, content{}, nil, err
	}
	def, err := findSection(id)
	if err != nil {
		return sectionDef{}, content{}, nil, err
	}
	c, err := def.build(snap, q, s.now())
	if err != nil {
		return sectionDef{}, content{}, nil, fmt.Errorf("section %s: %w", id, err)
	}
	return def, c, snap, nil
}

// Page renders one section under the given query.
func (s *Service) Page(ctx context.Context, id string, q Query) (Page, error) {
	def, c, snap, err := s.content(ctx, id, q)
	if err != nil {
		return Page{}, err
	}

	page := Page{
		ID:         def.ID,
		Title:      def.Title,
		Summary:    def.Summary,
		SurveyName: snap.SurveyName,
		Version:    snap.Version,
		Published:  snap.Published.Format("2 January 2006"),
		Narrative:  c.narrative,
		Metrics:    c.metrics,
		Filter:     c.filter,
		Nav:        s.Nav(def.ID),
	}
	for _, t := range c.tables {
		page.Tables = append(page.Tables, t.view)
		metrics.RecordTableQuery(t.view.Dataset, len(t.view.Rows))
	}
	for _, spec := range c.charts {
		a, err := s.render(spec, q)
		if err != nil {
			return Page{}, fmt.Errorf("chart %s: %w", spec.id, err)
		}
		r, _ := a.Current()
		page.Charts = append(page.Charts, s.chartView(def.ID, spec, r, q))
	}

	metrics.RecordPageView(def.ID)
	s.logger.Debug(ctx, "rendered section",
		logger.String("section", def.ID),
		logger.Int("tables", len(page.Tables)),
		logger.Int("charts", len(page.Charts)),
	)
	return page, nil
}

func (s *Service) adapter() *chart.Adapter {
	return chart.NewAdapter(
		chart.WithPalette(s.palette),
		chart.WithSize(s.chartWidth, s.chartHeight),
		chart.WithClock(s.now),
	)
}

// render draws the chart in its default kind and applies any override
// carried in the query.
func (s *Service) render(spec chartSpec, q Query) (*chart.Adapter, error) {
	a := s.adapter()
	if _, err := a.Render(spec.data, spec.kind, spec.opts); err != nil {
		return nil, err
	}
	if k, ok := q.Kinds[spec.id]; ok && k != spec.kind {
		if _, err := a.ToggleKind(k); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *Service) chartView(section string, spec chartSpec, r chart.Rendering, q Query) ChartView {
	kinds := []chart.Kind{spec.kind}
	if spec.opts.AllowToggle {
		kinds = chart.Kinds()
	}
	base := fmt.Sprintf("/api/sections/%s/charts/%s", section, spec.id)
	query := ""
	if enc := q.Values().Encode(); enc != "" {
		query = "?" + enc
	}
	return ChartView{
		ID:          spec.id,
		Rendering:   r,
		DefaultKind: spec.kind,
		Kinds:       kinds,
		PNGPath:     base + ".png" + query,
		SVGPath:     base + ".svg" + query,
		FileName:    chart.ImageFileName(r.Title, s.now()),
	}
}

// Chart renders one chart of a section and returns the adapter holding it,
// ready for Rasterize or ExportImage.
func (s *Service) Chart(ctx context.Context, section, chartID string, q Query) (*chart.Adapter, error) {
	_, c, _, err := s.content(ctx, section, q)
	if err != nil {
		return nil, err
	}
	for _, spec := range c.charts {
		if spec.id == chartID {
			return s.render(spec, q)
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrChartNotFound, section, chartID)
}

// TableCSV writes the visible rows of a section table as CSV and returns
// the file name the download should use.
func (s *Service) TableCSV(ctx context.Context, section, tableID string, q Query, w io.Writer) (string, error) {
	_, c, _, err := s.content(ctx, section, q)
	if err != nil {
		return "", err
	}
	for _, t := range c.tables {
		if t.view.ID != tableID {
			continue
		}
		if err := t.export(w); err != nil {
			metrics.RecordExport("csv", "failed")
			s.logger.Error(ctx, "csv export failed",
				logger.String("section", section),
				logger.String("table", tableID),
				logger.Error(err),
			)
			return "", err
		}
		metrics.RecordExport("csv", "ok")
		return t.view.FileName, nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrTableNotFound, section, tableID)
}

// RatesCSV exports the salary rates table.
func (s *Service) RatesCSV(ctx context.Context, q Query, w io.Writer) (string, error) {
	return s.TableCSV(ctx, SectionRates, repository.DatasetRoleRates, q, w)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"sections": len(sections),
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	snap := s.store.Snapshot(ctx)
	stats["version"] = snap.Version
	stats["loadedAt"] = s.store.LoadedAt().UTC().Format(time.RFC3339)
	counts := map[string]int{}
	for _, name := range repository.Datasets() {
		if n, err := s.store.Count(ctx, name); err == nil {
			counts[name] = n
			metrics.UpdateDatasetRecords(name, n)
		}
	}
	stats["datasets"] = counts
	return stats
}
