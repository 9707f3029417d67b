package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrUnknownKind    = errors.New("unknown chart kind")
	ErrUnknownFormat  = errors.New("unknown image format")
	ErrToggleDisabled = errors.New("chart kind toggling is disabled")
	ErrNotRendered    = errors.New("chart has not been rendered")
	ErrRasterize      = errors.New("chart rasterisation failed")
)
