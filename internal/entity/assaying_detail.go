package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/assay-loader/constants"
)

// AssayingDetail is one commodity_wise_assaying_details row.
type AssayingDetail struct {
	ID                  uuid.UUID               `json:"id"`
	CommodityID         uuid.UUID               `json:"commodity_id"`
	ParameterType       constants.ParameterType `json:"parameter_type"`
	SequenceNo          int                     `json:"sequence_no"`
	AssayingParameterID uuid.UUID               `json:"assaying_parameter_id"`
	Range1              *string                 `json:"range_1,omitempty"`
	Range2              *string                 `json:"range_2,omitempty"`
	Range3              *string                 `json:"range_3,omitempty"`
	SampleSize          string                  `json:"sample_size"`
	SamplingUnitID      uuid.UUID               `json:"sampling_unit_id"`
	MeasurementTypeID   uuid.UUID               `json:"measurement_type_id"`
	FAQRange            *string                 `json:"faq_range,omitempty"`
	IsActive            bool                    `json:"is_active"`
	IsDeleted           bool                    `json:"is_deleted"`
	CreatedBy           uuid.UUID               `json:"created_by"`
	UpdatedBy           uuid.UUID               `json:"updated_by"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}
