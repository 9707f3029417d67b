package dataset

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrUnknownGeography = errors.New("unknown geography")
	ErrUnknownRegion    = errors.New("unknown region")
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
)
