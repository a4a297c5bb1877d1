package model

import "time"

// CheckRun is one complete pass over the configured table list.
// Results preserve the configured table order.
type CheckRun struct {
	ID            string        `json:"id"`
	Schema        string        `json:"schema"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	TablesChecked int           `json:"tables_checked"`
	Failures      int           `json:"failures"`
	ArchivePath   string        `json:"archive_path,omitempty"`
	Results       []TableResult `json:"results"`
}
