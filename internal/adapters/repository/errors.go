package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrLoadSnapshot   = errors.New("load snapshot")
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrEmptySnapshot  = errors.New("snapshot source is empty")
)
