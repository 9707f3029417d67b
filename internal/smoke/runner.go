package smoke

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/pkg/logger"
)

// Check failures.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMismatch         = errors.New("response mismatch")
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Check is the outcome of one request.
type Check struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// OK reports whether the check passed.
func (c Check) OK() bool { return c.Err == "" }

// Report collects every check of a run in completion order.
type Report struct {
	mu     sync.Mutex
	Checks []Check `json:"checks"`
}

func (r *Report) add(c Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Checks = append(r.Checks, c)
}

// Failed returns the failing checks.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.OK() {
			out = append(out, c)
		}
	}
	return out
}

// Summary is a one-line count of passes and failures.
func (r *Report) Summary() string {
	failed := len(r.Failed())
	return fmt.Sprintf("%d checks, %d passed, %d failed", len(r.Checks), len(r.Checks)-failed, failed)
}

type job struct {
	name string
	path string
	run  func(ctx context.Context, resp response) error
}

// Run fetches the section list, every section page, then every table CSV
// and chart PNG with up to cfg.Workers concurrent requests. The returned
// error is non-nil when any check failed or the section list could not
// be read.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get()
	client := newHTTPClient(cfg.Timeout)
	report := &Report{}

	var sections []service.Section
	if err := client.getJSON(ctx, cfg.url("/api/sections"), &sections); err != nil {
		return report, fmt.Errorf("list sections: %w", err)
	}
	log.Info(ctx, "smoke run started", logger.String("baseURL", cfg.BaseURL), logger.Int("sections", len(sections)))

	var (
		jobsMu sync.Mutex
		jobs   []job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, s := range sections {
		path := "/api/sections/" + s.ID
		g.Go(func() error {
			start := time.Now()
			var page service.Page
			err := client.getJSON(gctx, cfg.url(path), &page)
			report.add(newCheck("page "+s.ID, path, start, err))
			if err != nil {
				return nil
			}
			jobsMu.Lock()
			jobs = append(jobs, downloads(page)...)
			jobsMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			start := time.Now()
			resp, err := client.get(gctx, cfg.url(j.path))
			if err == nil {
				err = j.run(gctx, resp)
			}
			report.add(newCheck(j.name, j.path, start, err))
			return nil
		})
	}
	_ = g.Wait()

	if failed := report.Failed(); len(failed) > 0 {
		for _, c := range failed {
			log.Warn(ctx, "smoke check failed", logger.String("check", c.Name), logger.String("error", c.Err))
		}
		return report, fmt.Errorf("%w: %s", ErrMismatch, report.Summary())
	}
	log.Info(ctx, "smoke run finished", logger.String("summary", report.Summary()))
	return report, nil
}

func newCheck(name, path string, start time.Time, err error) Check {
	c := Check{Name: name, Path: path, Duration: time.Since(start)}
	if err != nil {
		c.Err = err.Error()
	}
	return c
}

// downloads lists the table and chart checks a page advertises.
func downloads(page service.Page) []job {
	var out []job
	for _, t := range page.Tables {
		out = append(out, job{
			name: fmt.Sprintf("csv %s/%s", page.ID, t.ID),
			path: t.CSVPath,
			run:  func(_ context.Context, resp response) error { return checkCSV(t, resp) },
		})
	}
	for _, c := range page.Charts {
		out = append(out, job{
			name: fmt.Sprintf("png %s/%s", page.ID, c.ID),
			path: c.PNGPath,
			run:  func(_ context.Context, resp response) error { return checkPNG(c, resp) },
		})
	}
	return out
}

// checkCSV requires the header row plus one record per visible row and the
// advertised file name.
func checkCSV(t service.Table, resp response) error {
	if resp.status != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}
	if err := checkFileName(resp.header, t.FileName); err != nil {
		return err
	}
	records, err := csv.NewReader(bytes.NewReader(resp.body)).ReadAll()
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	if want := len(t.Rows) + 1; len(records) != want {
		return fmt.Errorf("%w: %d csv records, want %d", ErrMismatch, len(records), want)
	}
	if len(records[0]) != len(t.Headers) {
		return fmt.Errorf("%w: %d csv columns, want %d", ErrMismatch, len(records[0]), len(t.Headers))
	}
	return nil
}

func checkPNG(c service.ChartView, resp response) error {
	if resp.status != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}
	if ct := resp.header.Get("Content-Type"); ct != "image/png" {
		return fmt.Errorf("%w: content type %q", ErrMismatch, ct)
	}
	if !bytes.HasPrefix(resp.body, pngMagic) {
		return fmt.Errorf("%w: body is not a PNG", ErrMismatch)
	}
	return checkFileName(resp.header, c.FileName)
}

func checkFileName(h http.Header, want string) error {
	_, params, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	if err != nil {
		return fmt.Errorf("%w: content disposition: %w", ErrMismatch, err)
	}
	if got := params["filename"]; got != want {
		return fmt.Errorf("%w: file name %q, want %q", ErrMismatch, got, want)
	}
	return nil
}
