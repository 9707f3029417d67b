package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/domain/chart"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// NewKind tags a sentinel with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// Wrap prefixes err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// statusFor maps service and domain errors onto an HTTP status and an
// error code for the JSON body.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrChartNotFound),
		errors.Is(err, service.ErrTableNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, chart.ErrToggleDisabled):
		return http.StatusConflict, "toggle_disabled"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrBadQuery),
		errors.Is(err, chart.ErrUnknownKind),
		errors.Is(err, chart.ErrUnknownFormat):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
