// Package smoke exercises a running paybench server end to end: every
// section page, every table download and every chart image.
package smoke

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"
)

// Defaults for Config.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 30 * time.Second
)

// ErrInvalidConfig reports an unusable smoke configuration.
var ErrInvalidConfig = errors.New("invalid smoke config")

// Config holds the parameters of a smoke run.
type Config struct {
	BaseURL string
	Workers int
	Timeout time.Duration
}

// NewConfig returns a Config with defaults.
func NewConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Workers: runtime.NumCPU(),
		Timeout: DefaultTimeout,
	}
}

// Validate checks the base URL and limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	switch {
	case err != nil:
		return fmt.Errorf("%w: base url: %w", ErrInvalidConfig, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%w: base url %q must be http or https", ErrInvalidConfig, c.BaseURL)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
