package repository

import (
	"context"
	"errors"

	"schemawatch/internal/model"
)

// ErrInvalidIdentifier is returned when a schema or table name does not look
// like a plain SQL identifier. Identifiers cannot be bound as query
// parameters, so anything else is rejected before interpolation.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ProbeResult is the raw outcome of a single-row probe against a table.
// ColumnNames come from the result set, so they reflect what a live query
// actually returns, not just what the catalog says.
type ProbeResult struct {
	ColumnNames []string
	RowFound    bool
}

// SchemaRepository defines read-only access to the database catalog and
// to single-row table probes. No business logic here — strictly queries.
type SchemaRepository interface {
	// TableExists reports whether schema.table resolves to a relation.
	TableExists(ctx context.Context, schema, table string) (bool, error)

	// Columns returns the catalog columns of schema.table ordered by
	// ordinal position. An existing table with no columns yields an
	// empty slice, not an error.
	Columns(ctx context.Context, schema, table string) ([]model.Column, error)

	// ProbeRow issues a "select up to one row" query against schema.table
	// and reports the result-set column names and whether a row came back.
	ProbeRow(ctx context.Context, schema, table string) (*ProbeResult, error)

	// ListTables returns the tables and views visible in the given schema,
	// ordered by name.
	ListTables(ctx context.Context, schema string) ([]model.Table, error)
}
