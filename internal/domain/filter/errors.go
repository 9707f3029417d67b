package filter

import "errors"

// Sentinel kinds for filter panel errors.
var (
	ErrUnknownRegion = errors.New("unknown region")
	ErrUnknownOrg    = errors.New("unknown organisation")
)
