package entity

import (
	"time"

	"github.com/google/uuid"
)

// MeasurementMethod is one measurement_component_master row.
type MeasurementMethod struct {
	ID              uuid.UUID `json:"id"`
	MeasurementType string    `json:"measurement_type"`
	IsActive        bool      `json:"is_active"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedBy       uuid.UUID `json:"created_by"`
	UpdatedBy       uuid.UUID `json:"updated_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
