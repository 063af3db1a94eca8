package repository

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/assay-loader/internal/entity"
)

const measurementTable = "measurement_component_master"

// MeasurementMethodExists reports whether an active measurement method with
// this name (case- and whitespace-insensitive) is already stored.
func (t *Tx) MeasurementMethodExists(ctx context.Context, name string) (bool, error) {
	query, args := t.builder().
		Select("id").
		From(entsql.Table(measurementTable)).
		Where(activeByName("measurement_type", name)).
		Limit(1).
		Query()

	var id uuid.UUID
	found, err := t.queryOne(ctx, query, args, &id)
	if err != nil {
		t.logger.Error("failed to check measurement method", "name", name, "error", err)
		return false, err
	}
	return found, nil
}

// InsertMeasurementMethod writes one measurement_component_master row.
func (t *Tx) InsertMeasurementMethod(ctx context.Context, m *entity.MeasurementMethod) error {
	query, args := t.builder().
		Insert(measurementTable).
		Columns("id", "measurement_type", "is_active", "created_by", "updated_by", "is_deleted", "created_at", "updated_at").
		Values(m.ID, m.MeasurementType, m.IsActive, m.CreatedBy, m.UpdatedBy, m.IsDeleted, m.CreatedAt, m.UpdatedAt).
		Query()

	if err := t.exec(ctx, query, args); err != nil {
		t.logger.Error("failed to insert measurement method", "name", m.MeasurementType, "error", err)
		return err
	}
	return nil
}
