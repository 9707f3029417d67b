// Package repository loads the survey snapshot and serves it read-only.
package repository

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/paybench/internal/domain/dataset"
	"github.com/okian/paybench/pkg/metrics"
)

//go:embed data/survey.yaml
var embedded embed.FS

// EmbeddedPath is the location of the bundled survey inside the embedded FS.
const EmbeddedPath = "data/survey.yaml"

// Dataset names used for counts, CSV file names and metrics labels.
const (
	DatasetOrganisations = "organisations"
	DatasetRoleRates     = "role-rates"
	DatasetKPIs          = "kpis"
	DatasetBenefits      = "benefits"
	DatasetFrameworks    = "frameworks"
	DatasetWagePolicy    = "wage-policy"
)

// Store provides read-only access to the survey snapshot.
type Store interface {
	// Snapshot returns the loaded snapshot. Callers must not mutate it.
	Snapshot(ctx context.Context) *dataset.Snapshot

	// Count returns the number of records in the named dataset.
	// Returns ErrUnknownDataset for names outside the Dataset* constants.
	Count(ctx context.Context, name string) (int, error)

	// LoadedAt reports when the snapshot was decoded.
	LoadedAt() time.Time
}

// SnapshotStore is the immutable, in-memory Store implementation.
type SnapshotStore struct {
	snap     *dataset.Snapshot
	loadedAt time.Time
}

var _ Store = (*SnapshotStore)(nil)

// Load decodes and validates the snapshot. Without options it reads the
// survey embedded in the binary.
func Load(_ context.Context, opts ...Option) (*SnapshotStore, error) {
	l := &loader{fsys: embedded, path: EmbeddedPath, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	raw := l.raw
	if l.fsys != nil {
		b, err := fs.ReadFile(l.fsys, l.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadSnapshot, l.path, err)
		}
		raw = b
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptySnapshot
	}

	var snap dataset.Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSnapshot, err)
	}

	s := &SnapshotStore{snap: &snap, loadedAt: l.now()}
	for _, name := range Datasets() {
		n, _ := s.Count(context.Background(), name)
		metrics.UpdateDatasetRecords(name, n)
	}
	metrics.MarkSnapshotLoaded(s.loadedAt)
	return s, nil
}

// MustLoad is Load for the embedded survey; it panics on a corrupt build.
func MustLoad() *SnapshotStore {
	s, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return s
}

// Datasets lists the dataset names in a stable order.
func Datasets() []string {
	return []string{
		DatasetOrganisations, DatasetRoleRates, DatasetKPIs,
		DatasetBenefits, DatasetFrameworks, DatasetWagePolicy,
	}
}

// Snapshot returns the loaded snapshot.
func (s *SnapshotStore) Snapshot(_ context.Context) *dataset.Snapshot { return s.snap }

// LoadedAt reports when the snapshot was decoded.
func (s *SnapshotStore) LoadedAt() time.Time { return s.loadedAt }

// Count returns the number of records in the named dataset.
func (s *SnapshotStore) Count(_ context.Context, name string) (int, error) {
	switch name {
	case DatasetOrganisations:
		return len(s.snap.Organisations), nil
	case DatasetRoleRates:
		return len(s.snap.RoleRates), nil
	case DatasetKPIs:
		return len(s.snap.KPIs), nil
	case DatasetBenefits:
		return len(s.snap.Benefits), nil
	case DatasetFrameworks:
		return len(s.snap.Frameworks), nil
	case DatasetWagePolicy:
		return len(s.snap.WagePolicy), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
}
