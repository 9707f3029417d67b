package table

import "errors"

// Sentinel kinds for table engine errors.
var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrInvalidColumn    = errors.New("invalid column definition")
	ErrInvalidDirection = errors.New("invalid sort direction")
	ErrExport           = errors.New("csv export failed")
)
