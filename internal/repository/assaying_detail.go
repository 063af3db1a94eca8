package repository

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/assay-loader/internal/entity"
)

const assayingDetailsTable = "commodity_wise_assaying_details"

// InsertAssayingDetail writes one fully resolved record.
func (t *Tx) InsertAssayingDetail(ctx context.Context, d *entity.AssayingDetail) error {
	query, args := t.builder().
		Insert(assayingDetailsTable).
		Columns(
			"id", "commodity_id", "parameter_type", "sequence_no", "assaying_parameter_id",
			"range_1", "range_2", "range_3", "sample_size", "sampling_unit_id",
			"measurement_type_id", "faq_range", "is_active", "is_deleted",
			"created_by", "updated_by", "created_at", "updated_at",
		).
		Values(
			d.ID, d.CommodityID, string(d.ParameterType), d.SequenceNo, d.AssayingParameterID,
			nullable(d.Range1), nullable(d.Range2), nullable(d.Range3), d.SampleSize, d.SamplingUnitID,
			d.MeasurementTypeID, nullable(d.FAQRange), d.IsActive, d.IsDeleted,
			d.CreatedBy, d.UpdatedBy, d.CreatedAt, d.UpdatedAt,
		).
		Query()

	if err := t.exec(ctx, query, args); err != nil {
		t.logger.Error("failed to insert assaying detail", "id", d.ID, "sequence_no", d.SequenceNo, "error", err)
		return err
	}
	return nil
}

// nullable turns a nil pointer into SQL NULL.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// CountAssayingDetails returns the number of active assaying detail records.
func (s *Store) CountAssayingDetails(ctx context.Context) (int, error) {
	query, args := s.builder().
		Select().
		Count().
		From(entsql.Table(assayingDetailsTable)).
		Where(entsql.EQ("is_deleted", false)).
		Query()

	var rows entsql.Rows
	if err := s.driver.Query(ctx, query, args, &rows); err != nil {
		s.logger.Error("failed to count assaying details", "error", err)
		return 0, err
	}
	defer func() { _ = rows.Close() }()
	return entsql.ScanInt(rows)
}
