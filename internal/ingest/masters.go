package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/common"
	"github.com/joseph-ayodele/assay-loader/internal/entity"
	"github.com/joseph-ayodele/assay-loader/internal/source"
)

// SeedStats summarizes a measurement method seeding run.
type SeedStats struct {
	Read        int
	Inserted    int
	Blank       int
	DuplicateIn int // repeated within the file
	Existing    int // already active in the store
}

// LoadStats summarizes a commodity type load.
type LoadStats struct {
	Read     int
	Inserted int
	Skipped  int
}

// SeedMeasurementMethods inserts every distinct, not yet stored measurement
// method named in tbl's "Measurement Unit / Method" column. Names compare
// case-insensitively after trimming. All inserts commit together.
func (p *Pipeline) SeedMeasurementMethods(ctx context.Context, tbl *source.Table) (SeedStats, error) {
	var stats SeedStats
	if !tbl.HasColumn(constants.ColMeasurementMethod) {
		return stats, common.NewAppError("SOURCE_ERROR", fmt.Sprintf("column %q not found", constants.ColMeasurementMethod), common.ErrInvalidInput)
	}

	err := p.inTx(ctx, func(tx Tx) error {
		seen := make(map[string]struct{})
		for _, row := range tbl.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats.Read++
			name := strings.TrimSpace(row.Get(constants.ColMeasurementMethod))
			if name == "" {
				stats.Blank++
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				stats.DuplicateIn++
				continue
			}
			seen[key] = struct{}{}

			exists, err := tx.MeasurementMethodExists(ctx, name)
			if err != nil {
				return fmt.Errorf("check measurement method %q: %w", name, err)
			}
			if exists {
				stats.Existing++
				p.logger.Debug("measurement method already exists", "name", name)
				continue
			}

			now := p.now()
			if err := tx.InsertMeasurementMethod(ctx, &entity.MeasurementMethod{
				ID:              p.newID(),
				MeasurementType: name,
				IsActive:        true,
				CreatedBy:       p.newID(),
				UpdatedBy:       p.newID(),
				CreatedAt:       now,
				UpdatedAt:       now,
			}); err != nil {
				return fmt.Errorf("insert measurement method %q: %w", name, err)
			}
			stats.Inserted++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	p.logger.Info("measurement methods seeded",
		"read", stats.Read, "inserted", stats.Inserted, "existing", stats.Existing,
		"duplicates", stats.DuplicateIn, "blank", stats.Blank)
	return stats, nil
}

// LoadCommodityTypes inserts one commodity_types row per source row with a
// non-blank name. All inserts commit together.
func (p *Pipeline) LoadCommodityTypes(ctx context.Context, tbl *source.Table) (LoadStats, error) {
	var stats LoadStats
	if !tbl.HasColumn(constants.ColCommodityTypeName) {
		return stats, common.NewAppError("SOURCE_ERROR", fmt.Sprintf("column %q not found", constants.ColCommodityTypeName), common.ErrInvalidInput)
	}

	err := p.inTx(ctx, func(tx Tx) error {
		for _, row := range tbl.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats.Read++
			name := strings.TrimSpace(row.Get(constants.ColCommodityTypeName))
			if name == "" {
				stats.Skipped++
				p.logger.Warn("skipped commodity type with blank name", "row", row.Index)
				continue
			}
			now := p.now()
			if err := tx.InsertCommodityType(ctx, &entity.CommodityType{
				ID:                p.newID(),
				CommodityTypeName: name,
				Description:       optionalString(row.Get(constants.ColDescription)),
				Status:            optionalString(row.Get(constants.ColStatus)),
				CreatedBy:         optionalString(row.Get(constants.ColCreatedBy)),
				UpdatedBy:         optionalString(row.Get(constants.ColUpdatedBy)),
				CreatedAt:         now,
				UpdatedAt:         now,
			}); err != nil {
				return fmt.Errorf("insert commodity type %q (row %d): %w", name, row.Index, err)
			}
			stats.Inserted++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	p.logger.Info("commodity types loaded", "read", stats.Read, "inserted", stats.Inserted, "skipped", stats.Skipped)
	return stats, nil
}

// inTx runs fn in one transaction, committing on success and rolling back otherwise.
func (p *Pipeline) inTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := p.store.Begin(ctx)
	if err != nil {
		p.logger.Error("failed to begin transaction", "error", err)
		return common.NewAppError("DB_ERROR", "failed to begin transaction", errors.Join(common.ErrDatabase, err))
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			p.logger.Error("rollback failed", "error", rbErr)
		}
		p.logger.Error("load aborted", "error", err)
		return common.NewAppError("DB_ERROR", "load aborted", errors.Join(common.ErrDatabase, err))
	}
	if err := tx.Commit(); err != nil {
		p.logger.Error("commit failed", "error", err)
		return common.NewAppError("DB_ERROR", "failed to commit", errors.Join(common.ErrDatabase, err))
	}
	return nil
}
