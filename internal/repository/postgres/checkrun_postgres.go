package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"schemawatch/internal/model"
	"schemawatch/internal/repository"
)

// CheckRunPostgres is a PostgreSQL implementation of repository.CheckRunRepository.
// Results are stored as a JSONB document alongside the run summary columns.
type CheckRunPostgres struct {
	db *sql.DB
}

// NewCheckRunPostgres creates a new CheckRunPostgres repository.
func NewCheckRunPostgres(db *sql.DB) *CheckRunPostgres {
	return &CheckRunPostgres{db: db}
}

var _ repository.CheckRunRepository = (*CheckRunPostgres)(nil)

// Create inserts a new check run row and returns the stored record.
func (r *CheckRunPostgres) Create(ctx context.Context, run *model.CheckRun) (*model.CheckRun, error) {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}

	const q = `
		INSERT INTO check_runs (id, schema_name, started_at, finished_at, tables_checked, failures, archive_path, results)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, schema_name, started_at, finished_at, tables_checked, failures, archive_path, results
	`
	row := r.db.QueryRowContext(ctx, q,
		run.ID,
		run.Schema,
		run.StartedAt,
		run.FinishedAt,
		run.TablesChecked,
		run.Failures,
		run.ArchivePath,
		results,
	)
	return scanCheckRun(row)
}

// FindByID fetches a single check run by its ID.
func (r *CheckRunPostgres) FindByID(ctx context.Context, id string) (*model.CheckRun, error) {
	const q = `
		SELECT id, schema_name, started_at, finished_at, tables_checked, failures, archive_path, results
		FROM check_runs
		WHERE id = $1
	`
	return scanCheckRun(r.db.QueryRowContext(ctx, q, id))
}

// List returns check runs using LIMIT/OFFSET pagination, most recent first,
// and a total count.
func (r *CheckRunPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.CheckRun], error) {
	const qCount = `SELECT COUNT(*) FROM check_runs`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, schema_name, started_at, finished_at, tables_checked, failures, archive_path, results
		FROM check_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CheckRun, 0)
	for rows.Next() {
		run, err := scanCheckRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.CheckRun]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a check run by ID. It does not return an error if the row does not exist.
func (r *CheckRunPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM check_runs WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Rows affected is irrelevant here; missing rows are not an error.
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckRun(s rowScanner) (*model.CheckRun, error) {
	var run model.CheckRun
	var results []byte
	if err := s.Scan(
		&run.ID,
		&run.Schema,
		&run.StartedAt,
		&run.FinishedAt,
		&run.TablesChecked,
		&run.Failures,
		&run.ArchivePath,
		&results,
	); err != nil {
		return nil, err
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &run.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	return &run, nil
}
