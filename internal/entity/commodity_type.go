package entity

import (
	"time"

	"github.com/google/uuid"
)

// CommodityType is one commodity_types row. Audit columns are free text here,
// copied verbatim from the source CSV.
type CommodityType struct {
	ID                uuid.UUID `json:"id"`
	CommodityTypeName string    `json:"commodity_type_name"`
	Description       *string   `json:"description,omitempty"`
	Status            *string   `json:"status,omitempty"`
	CreatedBy         *string   `json:"created_by,omitempty"`
	UpdatedBy         *string   `json:"updated_by,omitempty"`
	IsDeleted         bool      `json:"is_deleted"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
