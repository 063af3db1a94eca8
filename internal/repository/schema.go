package repository

import (
	"context"
	"strings"

	"entgo.io/ent/dialect"

	"github.com/joseph-ayodele/assay-loader/constants"
)

// columnTypes maps the logical column types used by the DDL below onto each dialect.
var columnTypes = map[string]*strings.Replacer{
	dialect.Postgres: strings.NewReplacer(
		"{uuid}", "uuid",
		"{text}", "text",
		"{bool}", "boolean",
		"{int}", "integer",
		"{time}", "timestamptz",
	),
	dialect.SQLite: strings.NewReplacer(
		"{uuid}", "TEXT",
		"{text}", "TEXT",
		"{bool}", "BOOLEAN",
		"{int}", "INTEGER",
		"{time}", "DATETIME",
	),
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS commodities (
		id {uuid} PRIMARY KEY,
		commodity_name {text} NOT NULL,
		is_deleted {bool} NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS assaying_component_master (
		id {uuid} PRIMARY KEY,
		assaying_parameter {text} NOT NULL,
		is_deleted {bool} NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS uom (
		id {uuid} PRIMARY KEY,
		uom_name {text} NOT NULL,
		is_deleted {bool} NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS measurement_component_master (
		id {uuid} PRIMARY KEY,
		measurement_type {text} NOT NULL,
		is_active {bool} NOT NULL DEFAULT TRUE,
		created_by {uuid},
		updated_by {uuid},
		is_deleted {bool} NOT NULL DEFAULT FALSE,
		created_at {time},
		updated_at {time}
	)`,
	`CREATE TABLE IF NOT EXISTS commodity_wise_assaying_details (
		id {uuid} PRIMARY KEY,
		commodity_id {uuid} NOT NULL REFERENCES commodities(id),
		parameter_type {text} NOT NULL CHECK (parameter_type IN ({parameter_types})),
		sequence_no {int} NOT NULL,
		assaying_parameter_id {uuid} NOT NULL REFERENCES assaying_component_master(id),
		range_1 {text},
		range_2 {text},
		range_3 {text},
		sample_size {text} NOT NULL,
		sampling_unit_id {uuid} NOT NULL REFERENCES uom(id),
		measurement_type_id {uuid} NOT NULL REFERENCES measurement_component_master(id),
		faq_range {text},
		is_active {bool} NOT NULL DEFAULT TRUE,
		is_deleted {bool} NOT NULL DEFAULT FALSE,
		created_by {uuid} NOT NULL,
		updated_by {uuid} NOT NULL,
		created_at {time} NOT NULL,
		updated_at {time} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS commodity_types (
		id {uuid} PRIMARY KEY,
		commodity_type_name {text} NOT NULL,
		description {text},
		status {text},
		created_by {text},
		updated_by {text},
		is_deleted {bool} NOT NULL DEFAULT FALSE,
		created_at {time},
		updated_at {time}
	)`,
}

// parameterTypeList renders the accepted parameter types as a SQL list.
func parameterTypeList() string {
	types := constants.ParameterTypes()
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = "'" + t + "'"
	}
	return strings.Join(quoted, ", ")
}

// Migrate creates the loader's tables when they are missing. Existing tables are left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	r := columnTypes[s.dialect]
	for _, ddl := range schemaDDL {
		ddl = strings.ReplaceAll(r.Replace(ddl), "{parameter_types}", parameterTypeList())
		if err := s.driver.Exec(ctx, ddl, []any{}, nil); err != nil {
			s.logger.Error("schema migration failed", "error", err)
			return err
		}
	}
	s.logger.Info("schema is up to date", "tables", len(schemaDDL))
	return nil
}
