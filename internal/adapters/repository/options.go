package repository

import (
	"io/fs"
	"time"
)

// Option applies a configuration option to the SnapshotStore loader.
type Option func(*loader)

type loader struct {
	fsys fs.FS
	path string
	raw  []byte
	now  func() time.Time
}

// WithFS reads the snapshot from path inside fsys instead of the embedded survey.
func WithFS(fsys fs.FS, path string) Option {
	return func(l *loader) {
		if fsys != nil && path != "" {
			l.fsys = fsys
			l.path = path
			l.raw = nil
		}
	}
}

// WithBytes decodes the snapshot from an in-memory YAML document.
func WithBytes(raw []byte) Option {
	return func(l *loader) {
		l.raw = raw
		l.fsys = nil
	}
}

// WithClock overrides the load timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *loader) {
		if now != nil {
			l.now = now
		}
	}
}
