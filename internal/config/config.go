// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Functions that may do I/O accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile enables a rotating log file in addition to stdout.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ExportDir is where CLI exports are written.
	ExportDir string `koanf:"export_dir"`

	// ChartWidth and ChartHeight are the default raster size in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// Palette is the ordered list of hex colours charts cycle through.
	Palette []string `koanf:"palette"`

	// DefaultSection is where "/" redirects.
	DefaultSection string `koanf:"default_section"`

	// OpenBrowser opens the dashboard once the server is listening.
	OpenBrowser bool `koanf:"open_browser"`

	// MetricsEnabled turns dashboard activity counters on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsInterval is how often runtime gauges are refreshed, e.g. "30s".
	MetricsInterval time.Duration `koanf:"metrics_interval"`
}

// DefaultPalette is used when no palette is configured.
var DefaultPalette = []string{
	"#1f4e79", "#2e8b57", "#c0504d", "#f2a900",
	"#7a5195", "#3fa7d6", "#8c564b", "#5b6770",
}

var hexColour = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		ExportDir:       "exports",
		ChartWidth:      800,
		ChartHeight:     320,
		Palette:         append([]string(nil), DefaultPalette...),
		DefaultSection:  "overview",
		MetricsEnabled:  true,
		MetricsInterval: 10 * time.Second,
	}
}

// Validate checks the invariants Load relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ChartWidth <= 0 || c.ChartHeight <= 0:
		return fmt.Errorf("%w: chart size must be positive, got %dx%d", ErrInvalidConfig, c.ChartWidth, c.ChartHeight)
	case len(c.Palette) == 0:
		return fmt.Errorf("%w: palette must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DefaultSection) == "":
		return fmt.Errorf("%w: default_section must not be empty", ErrInvalidConfig)
	case c.MetricsInterval <= 0:
		return fmt.Errorf("%w: metrics_interval must be positive, got %s", ErrInvalidConfig, c.MetricsInterval)
	}
	for _, p := range c.Palette {
		if !hexColour.MatchString(strings.TrimSpace(p)) {
			return fmt.Errorf("%w: palette entry %q is not a hex colour", ErrInvalidConfig, p)
		}
	}
	return nil
}
