package repository

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/assay-loader/internal/common"
	"github.com/joseph-ayodele/assay-loader/internal/entity"
)

type referenceTable struct {
	Table  string
	Column string
}

// referenceTables maps each reference kind onto its master-data table and name column.
var referenceTables = map[entity.ReferenceKind]referenceTable{
	entity.KindCommodity:         {Table: "commodities", Column: "commodity_name"},
	entity.KindAssayingParameter: {Table: "assaying_component_master", Column: "assaying_parameter"},
	entity.KindMeasurementMethod: {Table: "measurement_component_master", Column: "measurement_type"},
	entity.KindUoM:               {Table: "uom", Column: "uom_name"},
}

func tableFor(kind entity.ReferenceKind) (referenceTable, error) {
	rt, ok := referenceTables[kind]
	if !ok {
		return referenceTable{}, fmt.Errorf("unknown reference kind %q", kind)
	}
	return rt, nil
}

// nameMatches is LOWER(TRIM(column)) = LOWER(TRIM(name)).
func nameMatches(column, name string) *entsql.Predicate {
	return entsql.P(func(b *entsql.Builder) {
		b.WriteString("LOWER(TRIM(").Ident(column).WriteString(")) = LOWER(TRIM(").Arg(name).WriteString("))")
	})
}

func activeByName(column, name string) *entsql.Predicate {
	return entsql.And(nameMatches(column, name), entsql.EQ("is_deleted", false))
}

// LookupReference resolves name against the active rows of kind's table,
// ignoring case and surrounding whitespace. ok is false when nothing matches.
func (t *Tx) LookupReference(ctx context.Context, kind entity.ReferenceKind, name string) (uuid.UUID, bool, error) {
	rt, err := tableFor(kind)
	if err != nil {
		return uuid.Nil, false, err
	}
	query, args := t.builder().
		Select("id").
		From(entsql.Table(rt.Table)).
		Where(activeByName(rt.Column, name)).
		Limit(1).
		Query()

	var id uuid.UUID
	found, err := t.queryOne(ctx, query, args, &id)
	if err != nil {
		t.logger.Error("reference lookup failed", "table", rt.Table, "name", name, "error", err)
		return uuid.Nil, false, err
	}
	return id, found, nil
}

// CountReferences returns the number of active rows per reference kind.
func (s *Store) CountReferences(ctx context.Context) (map[entity.ReferenceKind]int, error) {
	out := make(map[entity.ReferenceKind]int, len(referenceTables))
	for _, kind := range entity.ReferenceKinds {
		rt := referenceTables[kind]
		query, args := s.builder().
			Select().
			Count().
			From(entsql.Table(rt.Table)).
			Where(entsql.EQ("is_deleted", false)).
			Query()

		var rows entsql.Rows
		if err := s.driver.Query(ctx, query, args, &rows); err != nil {
			s.logger.Error("failed to count references", "table", rt.Table, "error", err)
			return nil, err
		}
		n, err := entsql.ScanInt(rows)
		_ = rows.Close()
		if err != nil {
			return nil, common.WrapError(err, "count "+rt.Table)
		}
		out[kind] = n
	}
	return out, nil
}

// InsertReference adds a master-data row of the given kind and returns its id.
// Measurement methods written this way carry no audit columns.
func (t *Tx) InsertReference(ctx context.Context, kind entity.ReferenceKind, name string, deleted bool) (uuid.UUID, error) {
	rt, err := tableFor(kind)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	query, args := t.builder().
		Insert(rt.Table).
		Columns("id", rt.Column, "is_deleted").
		Values(id, name, deleted).
		Query()
	if err := t.exec(ctx, query, args); err != nil {
		t.logger.Error("failed to insert reference", "table", rt.Table, "name", name, "error", err)
		return uuid.Nil, err
	}
	return id, nil
}
