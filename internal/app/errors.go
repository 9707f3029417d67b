package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for page view errors.
var (
	ErrSectionNotFound = errors.New("section not found")
	ErrChartNotFound   = errors.New("chart not found")
	ErrTableNotFound   = errors.New("table not found")
	ErrBadQuery        = errors.New("bad query")
	ErrNotStarted      = errors.New("service not started")
)

func badQuery(err error) error {
	return fmt.Errorf("%w: %w", ErrBadQuery, err)
}
