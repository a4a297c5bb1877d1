package repository

import (
	"context"

	"schemawatch/internal/model"
)

// CheckRunRepository defines persistence for completed check runs.
// No business logic here — strictly persistence operations.
type CheckRunRepository interface {
	// Create inserts a new check run record and returns the stored row.
	// The caller provides the ID and timestamps.
	Create(ctx context.Context, run *model.CheckRun) (*model.CheckRun, error)

	// FindByID returns a check run by its ID.
	FindByID(ctx context.Context, id string) (*model.CheckRun, error)

	// List returns a paginated list of check runs, most recent first,
	// along with the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.CheckRun], error)

	// Delete removes a check run by ID. It returns nil if the row was
	// deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
