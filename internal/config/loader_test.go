package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/paybench/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// Keep a stray .env in the package directory out of the picture.
		_ = os.Setenv(config.EnvDotFile, writeTempFile(t, "paybench.env", ""))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ChartWidth, convey.ShouldEqual, 800)
				convey.So(cfg.Palette, convey.ShouldResemble, config.DefaultPalette)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PAYBENCH_ADDR", ":8080")
			_ = os.Setenv("PAYBENCH_CHART_WIDTH", "1024")
			_ = os.Setenv("PAYBENCH_OPEN_BROWSER", "true")
			_ = os.Setenv("PAYBENCH_PALETTE", "#112233, #445566")
			_ = os.Setenv("PAYBENCH_METRICS_ENABLED", "false")
			_ = os.Setenv("PAYBENCH_METRICS_INTERVAL", "30s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ChartWidth, convey.ShouldEqual, 1024)
				convey.So(cfg.OpenBrowser, convey.ShouldBeTrue)
				convey.So(cfg.Palette, convey.ShouldResemble, []string{"#112233", "#445566"})
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsInterval, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeTempFile(t, "paybench.yaml", `
addr: ":9090"
chart_height: 400
export_dir: /tmp/paybench
palette:
  - "#000000"
  - "#ffffff"
`)
			_ = os.Setenv(config.EnvConfig, path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ChartHeight, convey.ShouldEqual, 400)
				convey.So(cfg.ExportDir, convey.ShouldEqual, "/tmp/paybench")
				convey.So(cfg.Palette, convey.ShouldResemble, []string{"#000000", "#ffffff"})
				convey.So(cfg.ChartWidth, convey.ShouldEqual, 800) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeTempFile(t, "paybench.yaml", "addr: \":9090\"\nchart_height: 400\n")
			_ = os.Setenv(config.EnvConfig, path)
			_ = os.Setenv("PAYBENCH_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ChartHeight, convey.ShouldEqual, 400)
			})
		})

		convey.Convey("When loading config with a .env file", func() {
			_ = os.Setenv(config.EnvDotFile, writeTempFile(t, "custom.env", "PAYBENCH_LOG_LEVEL=debug\nPAYBENCH_DEFAULT_SECTION=rates\n"))
			defer func() {
				_ = os.Unsetenv("PAYBENCH_LOG_LEVEL")
				_ = os.Unsetenv("PAYBENCH_DEFAULT_SECTION")
			}()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the .env values should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DefaultSection, convey.ShouldEqual, "rates")
			})
		})

		convey.Convey("When the named .env file does not exist", func() {
			_ = os.Setenv(config.EnvDotFile, "/non/existent/paybench.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv(config.EnvConfig, writeTempFile(t, "broken.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv(config.EnvConfig, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("PAYBENCH_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PAYBENCH_CHART_WIDTH", "wide")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		config.EnvConfig,
		config.EnvDotFile,
		"PAYBENCH_ADDR",
		"PAYBENCH_LOG_LEVEL",
		"PAYBENCH_CHART_WIDTH",
		"PAYBENCH_CHART_HEIGHT",
		"PAYBENCH_OPEN_BROWSER",
		"PAYBENCH_PALETTE",
		"PAYBENCH_DEFAULT_SECTION",
		"PAYBENCH_METRICS_ENABLED",
		"PAYBENCH_METRICS_INTERVAL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
