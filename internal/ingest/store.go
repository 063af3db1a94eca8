package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assay-loader/internal/entity"
	"github.com/joseph-ayodele/assay-loader/internal/repository"
)

// ReferenceLookup resolves master-data names to ids.
type ReferenceLookup interface {
	LookupReference(ctx context.Context, kind entity.ReferenceKind, name string) (uuid.UUID, bool, error)
}

// Tx is the transactional view of the store a loader works through.
type Tx interface {
	ReferenceLookup
	InsertAssayingDetail(ctx context.Context, d *entity.AssayingDetail) error
	MeasurementMethodExists(ctx context.Context, name string) (bool, error)
	InsertMeasurementMethod(ctx context.Context, m *entity.MeasurementMethod) error
	InsertCommodityType(ctx context.Context, c *entity.CommodityType) error

	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
	Commit() error
	Rollback() error
}

// Store opens the single transaction of a run.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

type repoStore struct {
	store *repository.Store
}

// NewStore adapts a repository.Store to the loaders.
func NewStore(s *repository.Store) Store {
	return repoStore{store: s}
}

func (r repoStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
