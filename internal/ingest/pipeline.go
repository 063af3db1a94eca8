package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/common"
	"github.com/joseph-ayodele/assay-loader/internal/entity"
	"github.com/joseph-ayodele/assay-loader/internal/source"
)

// Recorder observes row outcomes as they happen.
type Recorder interface {
	RecordOutcome(kind constants.OutcomeKind)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(constants.OutcomeKind) {}

// Pipeline loads commodity-wise assaying details.
type Pipeline struct {
	store    Store
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() uuid.UUID
}

type Option func(*Pipeline)

// WithRecorder reports each row outcome to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithClock overrides the timestamp source for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides how record and audit ids are generated.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(p *Pipeline) {
		if gen != nil {
			p.newID = gen
		}
	}
}

func NewPipeline(store Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		store:    store,
		logger:   logger,
		recorder: nopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ResolveReference looks name up in kind's table. Lookup failures are logged and
// reported as not found.
func (p *Pipeline) ResolveReference(ctx context.Context, lookup ReferenceLookup, kind entity.ReferenceKind, name string) (uuid.UUID, bool) {
	id, ok, err := lookup.LookupReference(ctx, kind, name)
	if err != nil {
		p.logger.Error("error fetching reference id", "kind", kind, "name", name, "error", err)
		return uuid.Nil, false
	}
	return id, ok
}

// ProcessRow takes one row to its terminal outcome. Only a cancelled context is fatal.
func (p *Pipeline) ProcessRow(ctx context.Context, tx Tx, row source.Row) Outcome {
	if err := ctx.Err(); err != nil {
		return Fatal(err)
	}

	if ok, missing := ValidateRow(row); !ok {
		return SkippedMissingField(missingFieldsReason(missing))
	}

	var (
		commodity  = strings.TrimSpace(row.Get(constants.ColCommodity))
		paramName  = strings.TrimSpace(row.Get(constants.ColParameterName))
		uom        = strings.TrimSpace(row.Get(constants.ColUoM))
		method     = strings.TrimSpace(row.Get(constants.ColMeasurementMethod))
		sampleSize = strings.TrimSpace(row.Get(constants.ColSampleSize))
	)
	paramType, _ := constants.NormalizeParameterType(row.Get(constants.ColParameterType))

	commodityID, okCommodity := p.ResolveReference(ctx, tx, entity.KindCommodity, commodity)
	paramID, okParam := p.ResolveReference(ctx, tx, entity.KindAssayingParameter, paramName)
	methodID, okMethod := p.ResolveReference(ctx, tx, entity.KindMeasurementMethod, method)
	uomID, okUoM := p.ResolveReference(ctx, tx, entity.KindUoM, uom)

	var missing []string
	if !okCommodity {
		missing = append(missing, fmt.Sprintf("%s '%s'", entity.KindCommodity.Label(), commodity))
	}
	if !okParam {
		missing = append(missing, fmt.Sprintf("%s '%s'", entity.KindAssayingParameter.Label(), paramName))
	}
	if !okMethod {
		missing = append(missing, fmt.Sprintf("%s '%s'", entity.KindMeasurementMethod.Label(), method))
	}
	if !okUoM {
		missing = append(missing, fmt.Sprintf("%s '%s'", entity.KindUoM.Label(), uom))
	}
	if len(missing) > 0 {
		if err := ctx.Err(); err != nil {
			return Fatal(err)
		}
		return SkippedMissingReference("Missing reference data: " + strings.Join(missing, ", "))
	}

	seq, ok := ParseSequenceNo(row.Get(constants.ColSequenceNo))
	if !ok {
		seq = row.Index + 1
		p.logger.Warn("using fallback sequence number", "row", row.Index, "sequence_no", seq, "raw", row.Get(constants.ColSequenceNo))
	}

	now := p.now()
	rec := &entity.AssayingDetail{
		ID:                  p.newID(),
		CommodityID:         commodityID,
		ParameterType:       paramType,
		SequenceNo:          seq,
		AssayingParameterID: paramID,
		Range1:              CleanRange(row.Get(constants.ColRange1)),
		Range2:              CleanRange(row.Get(constants.ColRange2)),
		Range3:              CleanRange(row.Get(constants.ColRange3)),
		SampleSize:          sampleSize,
		SamplingUnitID:      uomID,
		MeasurementTypeID:   methodID,
		FAQRange:            CleanRange(row.Get(constants.ColFAQRange)),
		IsActive:            true,
		IsDeleted:           false,
		CreatedBy:           p.newID(),
		UpdatedBy:           p.newID(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.InsertAssayingDetail(ctx, rec); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Fatal(ctxErr)
		}
		return SkippedError("Unexpected error: " + err.Error())
	}
	return Inserted(rec)
}

// RunBatch processes every row of tbl in order inside one transaction and
// commits once at the end. Each row runs under its own savepoint so a failed
// statement only discards that row. Any savepoint, commit or context failure
// rolls the whole batch back and is returned as an error.
func (p *Pipeline) RunBatch(ctx context.Context, tbl *source.Table) (Summary, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	sum := newSummary(runID)
	logger := p.logger.With("run_id", runID)

	tx, err := p.store.Begin(ctx)
	if err != nil {
		logger.Error("failed to begin transaction", "error", err)
		return *sum, common.NewAppError("DB_ERROR", "failed to begin transaction", errors.Join(common.ErrDatabase, err))
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("rollback failed", "error", rbErr)
			}
		}
	}()

	for _, row := range tbl.Rows {
		out, err := p.runRow(ctx, tx, row)
		if err != nil {
			logger.Error("batch aborted", "row", row.Index, "error", err)
			sum.Duration = time.Since(start)
			return *sum, err
		}
		p.recorder.RecordOutcome(out.Kind)
		sum.add(out, SkippedRow{
			Index:     row.Index,
			Line:      row.Line,
			Kind:      out.Kind,
			Reason:    out.Reason,
			Commodity: strings.TrimSpace(row.Get(constants.ColCommodity)),
			Parameter: strings.TrimSpace(row.Get(constants.ColParameterName)),
		})
		switch {
		case out.Kind == constants.OutcomeSkippedError:
			logger.Error("skipped row", "row", row.Index, "reason", out.Reason)
		case out.Kind.IsSkip():
			logger.Warn("skipped row", "row", row.Index, "reason", out.Reason)
		default:
			logger.Debug("inserted row", "row", row.Index, "id", out.Record.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("commit failed", "error", err)
		sum.Duration = time.Since(start)
		return *sum, common.NewAppError("DB_ERROR", "failed to commit batch", errors.Join(common.ErrDatabase, err))
	}
	committed = true
	sum.Duration = time.Since(start)

	for _, r := range sum.Reasons {
		logger.Info("records skipped", "count", r.Count, "reason", r.Reason)
	}
	logger.Info("data insertion completed", "inserted", sum.Inserted, "skipped", sum.Skipped, "duration", sum.Duration)
	return *sum, nil
}

// runRow wraps ProcessRow in a savepoint. A non-nil error aborts the batch.
func (p *Pipeline) runRow(ctx context.Context, tx Tx, row source.Row) (Outcome, error) {
	sp := fmt.Sprintf("row_%d", row.Index)
	if err := tx.Savepoint(ctx, sp); err != nil {
		return Outcome{}, common.NewAppError("DB_ERROR", "failed to create savepoint", errors.Join(common.ErrDatabase, err))
	}

	out := p.processRecovered(ctx, tx, row)
	if out.Kind == constants.OutcomeFatal {
		return out, common.NewAppError("RUN_ABORTED", fmt.Sprintf("run aborted at row %d", row.Index), out.Err)
	}

	if out.Kind != constants.OutcomeInserted {
		if err := tx.RollbackTo(ctx, sp); err != nil {
			return out, common.NewAppError("DB_ERROR", "failed to roll back to savepoint", errors.Join(common.ErrDatabase, err))
		}
	}
	if err := tx.Release(ctx, sp); err != nil {
		return out, common.NewAppError("DB_ERROR", "failed to release savepoint", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

// processRecovered runs ProcessRow, turning a panic into a skipped row.
func (p *Pipeline) processRecovered(ctx context.Context, tx Tx, row source.Row) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("row panicked", "row", row.Index, "panic", r, "stack", string(debug.Stack()))
			out = SkippedError(fmt.Sprintf("Unexpected error: %v", r))
		}
	}()
	return p.ProcessRow(ctx, tx, row)
}
