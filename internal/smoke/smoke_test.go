package smoke_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/paybench/internal/adapters/http/api"
	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/smoke"
	"github.com/okian/paybench/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(service.WithClock(func() time.Time {
		return time.Date(2024, 10, 3, 12, 0, 0, 0, time.UTC)
	}))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigValidate(t *testing.T) {
	Convey("Given a smoke config", t, func() {
		cfg := smoke.NewConfig()

		Convey("Then the defaults should be valid", func() {
			So(cfg.Validate(), ShouldBeNil)
			So(cfg.Workers, ShouldBeGreaterThan, 0)
		})

		Convey("When the scheme is not http", func() {
			cfg.BaseURL = "ftp://example.com"
			So(errors.Is(cfg.Validate(), smoke.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When workers is zero", func() {
			cfg.Workers = 0
			So(errors.Is(cfg.Validate(), smoke.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the timeout is zero", func() {
			cfg.Timeout = 0
			So(errors.Is(cfg.Validate(), smoke.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running paybench API", t, func() {
		srv := newServer(t)
		cfg := smoke.NewConfig()
		cfg.BaseURL = srv.URL + "/"
		cfg.Workers = 4

		Convey("When running the smoke checks", func() {
			report, err := smoke.Run(context.Background(), cfg)

			Convey("Then every check should pass", func() {
				So(err, ShouldBeNil)
				So(report.Failed(), ShouldBeEmpty)
			})

			Convey("And every section, table and chart should be covered", func() {
				var pages, csvs, pngs int
				for _, c := range report.Checks {
					switch {
					case strings.HasPrefix(c.Name, "page "):
						pages++
					case strings.HasPrefix(c.Name, "csv "):
						csvs++
					case strings.HasPrefix(c.Name, "png "):
						pngs++
					}
				}
				So(pages, ShouldEqual, 7)
				So(csvs, ShouldEqual, 6)
				So(pngs, ShouldEqual, 9)
				So(report.Summary(), ShouldEqual, "22 checks, 22 passed, 0 failed")
			})
		})
	})

	Convey("Given a server that only lists sections", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/sections", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"rates","title":"Salary Rates","path":"/sections/rates"}]`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		cfg := smoke.NewConfig()
		cfg.BaseURL = srv.URL

		Convey("When running the smoke checks", func() {
			report, err := smoke.Run(context.Background(), cfg)

			Convey("Then the missing page should fail the run", func() {
				So(errors.Is(err, smoke.ErrMismatch), ShouldBeTrue)
				So(report.Failed(), ShouldHaveLength, 1)
				So(report.Failed()[0].Err, ShouldContainSubstring, "404")
			})
		})
	})

	Convey("Given an unreachable server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		cfg := smoke.NewConfig()
		cfg.BaseURL = srv.URL
		cfg.Timeout = time.Second

		Convey("Then the section list error should be returned", func() {
			_, err := smoke.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "list sections")
		})
	})
}
