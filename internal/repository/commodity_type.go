package repository

import (
	"context"

	"github.com/joseph-ayodele/assay-loader/internal/entity"
)

const commodityTypesTable = "commodity_types"

// InsertCommodityType writes one commodity_types row.
func (t *Tx) InsertCommodityType(ctx context.Context, c *entity.CommodityType) error {
	query, args := t.builder().
		Insert(commodityTypesTable).
		Columns("id", "commodity_type_name", "description", "status", "created_by", "updated_by", "is_deleted", "created_at", "updated_at").
		Values(c.ID, c.CommodityTypeName, nullable(c.Description), nullable(c.Status), nullable(c.CreatedBy), nullable(c.UpdatedBy), c.IsDeleted, c.CreatedAt, c.UpdatedAt).
		Query()

	if err := t.exec(ctx, query, args); err != nil {
		t.logger.Error("failed to insert commodity type", "name", c.CommodityTypeName, "error", err)
		return err
	}
	return nil
}
