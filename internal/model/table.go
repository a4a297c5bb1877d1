package model

// TableStatus describes the outcome of probing a single table.
type TableStatus string

const (
	// TableStatusOK means the probe succeeded and at least one row came back.
	TableStatusOK TableStatus = "ok"
	// TableStatusEmpty means the table exists but the probe returned no rows.
	TableStatusEmpty TableStatus = "empty"
	// TableStatusError means the probe query failed; Error carries the message.
	TableStatusError TableStatus = "error"
)

// Column is one column of a table as reported by the database catalog.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Position int    `json:"position"`
}

// Table is a table visible in the target schema.
type Table struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// TableDetail describes one table: whether it exists and its catalog columns.
type TableDetail struct {
	Schema  string   `json:"schema"`
	Name    string   `json:"name"`
	Exists  bool     `json:"exists"`
	Columns []Column `json:"columns"`
}

// TableResult is the outcome of probing one table during a check run.
// A failed probe is recorded here and never propagated; the check
// continues with the next table.
type TableResult struct {
	Table      string      `json:"table"`
	Status     TableStatus `json:"status"`
	Columns    []string    `json:"columns,omitempty"`
	RowFound   bool        `json:"row_found"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}
