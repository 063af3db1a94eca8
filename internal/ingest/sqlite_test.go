package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/entity"
	"github.com/joseph-ayodele/assay-loader/internal/repository"
	"github.com/joseph-ayodele/assay-loader/internal/source"
)

func openSQLiteStore(t *testing.T) *repository.Store {
	t.Helper()
	ctx := context.Background()
	s, err := repository.Open(ctx, repository.Config{DSN: "sqlite:" + filepath.Join(t.TempDir(), "assay.db")}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	for kind, name := range map[entity.ReferenceKind]string{
		entity.KindCommodity:         "Gold ",
		entity.KindAssayingParameter: "Purity",
		entity.KindMeasurementMethod: "XRF",
		entity.KindUoM:               "%",
	} {
		_, err := tx.InsertReference(ctx, kind, name, false)
		require.NoError(t, err)
	}
	_, err = tx.InsertReference(ctx, entity.KindUoM, "kg", true)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return s
}

func TestRunBatch_SQLite(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	p := NewPipeline(NewStore(s), discardLogger())

	sum, err := p.RunBatch(ctx, batchTable())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Inserted)
	assert.Equal(t, 3, sum.Skipped)
	assert.Equal(t, []SkipReason{
		{Reason: "Missing required fields: Commodity", Count: 2},
		{Reason: "Missing reference data: UOM 'kg'", Count: 1},
	}, sum.Reasons, "soft-deleted kg must not resolve")

	n, err := s.CountAssayingDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// No idempotence: a second identical run duplicates every record.
	_, err = p.RunBatch(ctx, batchTable())
	require.NoError(t, err)
	n, err = s.CountAssayingDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

// flakyStore loses its connection after a number of savepoints.
type flakyStore struct {
	inner     Store
	failAfter int
}

type flakyTx struct {
	Tx
	left int
}

func (s *flakyStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &flakyTx{Tx: tx, left: s.failAfter}, nil
}

func (t *flakyTx) Savepoint(ctx context.Context, name string) error {
	if t.left == 0 {
		return errors.New("driver: bad connection")
	}
	t.left--
	return t.Tx.Savepoint(ctx, name)
}

func TestRunBatch_SQLiteStoreLostRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	p := NewPipeline(&flakyStore{inner: NewStore(s), failAfter: 5}, discardLogger())

	sum, err := p.RunBatch(ctx, batchTable())
	require.Error(t, err)
	assert.Equal(t, 2, sum.Inserted)

	n, err := s.CountAssayingDetails(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is committed when the batch aborts")
}

func TestSeedAndLoad_SQLite(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	p := NewPipeline(NewStore(s), discardLogger())

	methods := &source.Table{
		Header: []string{constants.ColMeasurementMethod},
		Rows: []source.Row{
			{Index: 0, Fields: map[string]string{constants.ColMeasurementMethod: "Sieve"}},
			{Index: 1, Fields: map[string]string{constants.ColMeasurementMethod: " sieve "}},
			{Index: 2, Fields: map[string]string{constants.ColMeasurementMethod: "xrf"}},
			{Index: 3, Fields: map[string]string{constants.ColMeasurementMethod: ""}},
		},
	}
	stats, err := p.SeedMeasurementMethods(ctx, methods)
	require.NoError(t, err)
	assert.Equal(t, SeedStats{Read: 4, Inserted: 1, Blank: 1, DuplicateIn: 1, Existing: 1}, stats)

	counts, err := s.CountReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[entity.KindMeasurementMethod])

	types := &source.Table{
		Header: []string{constants.ColCommodityTypeName, constants.ColDescription},
		Rows: []source.Row{
			{Index: 0, Fields: map[string]string{constants.ColCommodityTypeName: "Cereals", constants.ColDescription: "Grains"}},
			{Index: 1, Fields: map[string]string{constants.ColCommodityTypeName: " "}},
		},
	}
	loaded, err := p.LoadCommodityTypes(ctx, types)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Read: 2, Inserted: 1, Skipped: 1}, loaded)
}
