package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"schemawatch/internal/model"
	"schemawatch/internal/repository"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// SchemaPostgres is a PostgreSQL implementation of repository.SchemaRepository.
// It reads the information_schema catalog and issues single-row probes;
// it never writes.
type SchemaPostgres struct {
	db *sql.DB
}

// NewSchemaPostgres creates a new SchemaPostgres repository.
func NewSchemaPostgres(db *sql.DB) *SchemaPostgres {
	return &SchemaPostgres{db: db}
}

var _ repository.SchemaRepository = (*SchemaPostgres)(nil)

// quoteQualified validates both identifiers and returns a quoted
// schema.table suitable for interpolation into a query.
func quoteQualified(schema, table string) (string, error) {
	if !identPattern.MatchString(schema) {
		return "", fmt.Errorf("%w: schema %q", repository.ErrInvalidIdentifier, schema)
	}
	if !identPattern.MatchString(table) {
		return "", fmt.Errorf("%w: table %q", repository.ErrInvalidIdentifier, table)
	}
	return fmt.Sprintf("%q.%q", schema, table), nil
}

// TableExists reports whether schema.table resolves to a relation.
func (r *SchemaPostgres) TableExists(ctx context.Context, schema, table string) (bool, error) {
	qualified, err := quoteQualified(schema, table)
	if err != nil {
		return false, err
	}
	const q = `SELECT to_regclass($1) IS NOT NULL`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, qualified).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Columns returns the catalog columns of schema.table ordered by ordinal position.
func (r *SchemaPostgres) Columns(ctx context.Context, schema, table string) ([]model.Column, error) {
	const q = `
		SELECT column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := r.db.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make([]model.Column, 0)
	for rows.Next() {
		var c model.Column
		var nullable string
		if err := rows.Scan(&c.Name, &c.DataType, &nullable, &c.Position); err != nil {
			return nil, err
		}
		c.Nullable = strings.EqualFold(nullable, "YES")
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// ProbeRow selects up to one row from schema.table and reports the
// result-set column names and whether a row came back.
func (r *SchemaPostgres) ProbeRow(ctx context.Context, schema, table string) (*repository.ProbeResult, error) {
	qualified, err := quoteQualified(schema, table)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 1`, qualified))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.ProbeResult{
		ColumnNames: names,
		RowFound:    found,
	}, nil
}

// ListTables returns the tables and views visible in the given schema, ordered by name.
func (r *SchemaPostgres) ListTables(ctx context.Context, schema string) ([]model.Table, error) {
	const q = `
		SELECT table_schema, table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name
	`
	rows, err := r.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.Schema, &t.Name, &t.Type); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}
