package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/entity"
	"github.com/joseph-ayodele/assay-loader/internal/source"
)

type fakeRef struct {
	id      uuid.UUID
	name    string
	deleted bool
}

// fakeTx keeps inserts in memory and honours savepoints.
type fakeTx struct {
	refs map[entity.ReferenceKind][]fakeRef

	lookupErr       error
	insertErr       error
	commitErr       error
	failSavepointAt int // 1-based call number; 0 never fails
	insertPanic     any
	onSavepoint     func(name string)

	lookups    int
	savepoints int
	marks      map[string]int

	inserted   []*entity.AssayingDetail
	methods    []*entity.MeasurementMethod
	types      []*entity.CommodityType
	committed  bool
	rolledBack bool
}

func newFakeTx() *fakeTx {
	return &fakeTx{refs: map[entity.ReferenceKind][]fakeRef{}, marks: map[string]int{}}
}

func (f *fakeTx) addRef(kind entity.ReferenceKind, name string, deleted bool) uuid.UUID {
	id := uuid.New()
	f.refs[kind] = append(f.refs[kind], fakeRef{id: id, name: name, deleted: deleted})
	return id
}

func (f *fakeTx) LookupReference(_ context.Context, kind entity.ReferenceKind, name string) (uuid.UUID, bool, error) {
	f.lookups++
	if f.lookupErr != nil {
		return uuid.Nil, false, f.lookupErr
	}
	for _, r := range f.refs[kind] {
		if !r.deleted && strings.EqualFold(strings.TrimSpace(r.name), strings.TrimSpace(name)) {
			return r.id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

func (f *fakeTx) InsertAssayingDetail(_ context.Context, d *entity.AssayingDetail) error {
	if f.insertPanic != nil {
		panic(f.insertPanic)
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, d)
	return nil
}

func (f *fakeTx) MeasurementMethodExists(_ context.Context, name string) (bool, error) {
	for _, r := range f.refs[entity.KindMeasurementMethod] {
		if !r.deleted && strings.EqualFold(strings.TrimSpace(r.name), strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTx) InsertMeasurementMethod(_ context.Context, m *entity.MeasurementMethod) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.methods = append(f.methods, m)
	return nil
}

func (f *fakeTx) InsertCommodityType(_ context.Context, c *entity.CommodityType) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.types = append(f.types, c)
	return nil
}

func (f *fakeTx) Savepoint(_ context.Context, name string) error {
	f.savepoints++
	if f.onSavepoint != nil {
		f.onSavepoint(name)
	}
	if f.failSavepointAt > 0 && f.savepoints >= f.failSavepointAt {
		return errors.New("connection refused")
	}
	f.marks[name] = len(f.inserted)
	return nil
}

func (f *fakeTx) RollbackTo(_ context.Context, name string) error {
	f.inserted = f.inserted[:f.marks[name]]
	return nil
}

func (f *fakeTx) Release(_ context.Context, name string) error {
	delete(f.marks, name)
	return nil
}

func (f *fakeTx) Commit() error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback() error {
	if f.committed {
		return nil
	}
	f.rolledBack = true
	f.inserted, f.methods, f.types = nil, nil, nil
	return nil
}

type fakeStore struct {
	tx       *fakeTx
	beginErr error
}

func (s *fakeStore) Begin(context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

type countingRecorder struct {
	counts map[constants.OutcomeKind]int
}

func (r *countingRecorder) RecordOutcome(kind constants.OutcomeKind) {
	if r.counts == nil {
		r.counts = map[constants.OutcomeKind]int{}
	}
	r.counts[kind]++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seededTx returns a fake with one active reference of each kind matching validRow.
func seededTx() *fakeTx {
	tx := newFakeTx()
	tx.addRef(entity.KindCommodity, "Gold ", false)
	tx.addRef(entity.KindAssayingParameter, "Purity", false)
	tx.addRef(entity.KindMeasurementMethod, "XRF", false)
	tx.addRef(entity.KindUoM, "%", false)
	return tx
}

func validRow(index int) source.Row {
	return source.Row{
		Index: index,
		Line:  index + 2,
		Fields: map[string]string{
			constants.ColCommodity:         "gold",
			constants.ColParameterType:     "Optional (Industrial/Processor)",
			constants.ColParameterName:     " purity ",
			constants.ColUoM:               "%",
			constants.ColMeasurementMethod: "xrf",
			constants.ColSampleSize:        "10g",
			constants.ColSequenceNo:        "4",
			constants.ColRange1:            " 90 - 95 ",
			constants.ColRange2:            "",
			constants.ColRange3:            "   ",
			constants.ColFAQRange:          "nan",
		},
	}
}

func withField(row source.Row, name, value string) source.Row {
	fields := make(map[string]string, len(row.Fields))
	for k, v := range row.Fields {
		fields[k] = v
	}
	fields[name] = value
	row.Fields = fields
	return row
}
