package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"schemawatch/internal/config"
	"schemawatch/internal/model"
	"schemawatch/internal/repository"
	"schemawatch/internal/storage"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrRunNotFound       = errors.New("check run not found")
	ErrTableNameRequired = errors.New("table name is required")
	ErrTableNotFound     = errors.New("table not found")
	ErrNoArchive         = errors.New("check run has no archived report")
)

// reportURLExpiry bounds how long a presigned report download link stays valid.
const reportURLExpiry = 15 * time.Minute

// CheckRunListResult is the service-level DTO for paginated check runs.
type CheckRunListResult struct {
	Items []model.CheckRun `json:"data"`
	Total int              `json:"total"`
}

// InspectionService defines the use cases for probing tables and managing
// check run history.
type InspectionService interface {
	// Inspect probes the configured tables strictly in order, one at a time.
	// A failed probe is recorded in its TableResult and never aborts the
	// pass; the only error returned is context cancellation.
	Inspect(ctx context.Context) ([]model.TableResult, error)

	// Run executes Inspect, persists the resulting check run, and archives
	// the JSON report to object storage. Archiving is best-effort: a failed
	// upload is logged and leaves ArchivePath empty.
	Run(ctx context.Context) (*model.CheckRun, error)

	// ListTables returns the tables visible in the configured schema.
	ListTables(ctx context.Context) ([]model.Table, error)

	// DescribeTable returns existence and catalog columns for one table.
	DescribeTable(ctx context.Context, table string) (*model.TableDetail, error)

	// ListRuns returns persisted check runs using limit/offset and a total count.
	ListRuns(ctx context.Context, limit, offset int) (*CheckRunListResult, error)

	// GetRun returns a single persisted check run by its ID.
	GetRun(ctx context.Context, id string) (*model.CheckRun, error)

	// ReportURL returns a presigned download URL for a run's archived report.
	ReportURL(ctx context.Context, id string) (string, error)

	// Report streams a run's archived JSON report from object storage.
	// The caller is responsible for closing the reader.
	Report(ctx context.Context, id string) (io.ReadCloser, error)

	// DeleteRun removes a persisted check run along with its archived report.
	DeleteRun(ctx context.Context, id string) error
}

// inspectionService is a concrete implementation of InspectionService.
type inspectionService struct {
	schema  repository.SchemaRepository
	runs    repository.CheckRunRepository
	store   storage.Storage
	cfg     config.CheckConfig
	metrics *CheckMetrics
}

// NewInspectionService constructs a new InspectionService.
// runs, store, and metrics may be nil for one-shot use (cmd/check), in which
// case only Inspect, ListTables, and DescribeTable are usable.
func NewInspectionService(
	schema repository.SchemaRepository,
	runs repository.CheckRunRepository,
	store storage.Storage,
	cfg config.CheckConfig,
	metrics *CheckMetrics,
) InspectionService {
	return &inspectionService{
		schema:  schema,
		runs:    runs,
		store:   store,
		cfg:     cfg,
		metrics: metrics,
	}
}

// Inspect runs the sequential probe loop. Each probe gets its own timeout;
// its outcome is folded into the TableResult before the next probe starts.
func (s *inspectionService) Inspect(ctx context.Context) ([]model.TableResult, error) {
	results := make([]model.TableResult, 0, len(s.cfg.Tables))

	for _, table := range s.cfg.Tables {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.probe(ctx, table))
	}

	return results, nil
}

func (s *inspectionService) probe(ctx context.Context, table string) model.TableResult {
	start := time.Now()
	res := model.TableResult{Table: table}

	probeCtx := ctx
	if s.cfg.ProbeTimeoutSec > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.ProbeTimeoutSec)*time.Second)
		defer cancel()
	}

	pr, err := s.schema.ProbeRow(probeCtx, s.cfg.Schema, table)
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		res.Status = model.TableStatusError
		res.Error = err.Error()
		s.metrics.observeProbeFailure(table)
		return res
	}

	res.Columns = pr.ColumnNames
	res.RowFound = pr.RowFound
	if pr.RowFound {
		res.Status = model.TableStatusOK
	} else {
		res.Status = model.TableStatusEmpty
	}
	return res
}

// Run executes a full pass, persists it, and archives the JSON report.
func (s *inspectionService) Run(ctx context.Context) (*model.CheckRun, error) {
	started := time.Now().UTC()

	results, err := s.Inspect(ctx)
	if err != nil {
		return nil, err
	}

	run := &model.CheckRun{
		ID:            uuid.New().String(),
		Schema:        s.cfg.Schema,
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
		TablesChecked: len(results),
		Results:       results,
	}
	for _, r := range results {
		if r.Status == model.TableStatusError {
			run.Failures++
		}
	}
	s.metrics.observeRun()

	// Archive before persisting so the stored row carries the final path.
	if key, err := s.archive(ctx, run); err != nil {
		logArchiveFailure(run.ID, err)
	} else {
		run.ArchivePath = key
	}

	stored, err := s.runs.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("persist check run: %w", err)
	}
	return stored, nil
}

// archive uploads the run report as JSON and returns its storage key.
func (s *inspectionService) archive(ctx context.Context, run *model.CheckRun) (string, error) {
	body, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	key := fmt.Sprintf("reports/%s.json", run.ID)
	_, err = s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"check-schema": run.Schema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return key, nil
}

// ListTables returns the live table listing for the configured schema.
func (s *inspectionService) ListTables(ctx context.Context) ([]model.Table, error) {
	return s.schema.ListTables(ctx, s.cfg.Schema)
}

// DescribeTable returns existence and catalog columns for one table.
func (s *inspectionService) DescribeTable(ctx context.Context, table string) (*model.TableDetail, error) {
	if table == "" {
		return nil, ErrTableNameRequired
	}

	exists, err := s.schema.TableExists(ctx, s.cfg.Schema, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTableNotFound
	}

	cols, err := s.schema.Columns(ctx, s.cfg.Schema, table)
	if err != nil {
		return nil, err
	}

	return &model.TableDetail{
		Schema:  s.cfg.Schema,
		Name:    table,
		Exists:  true,
		Columns: cols,
	}, nil
}

// ListRuns returns paginated check runs without exposing repository types.
func (s *inspectionService) ListRuns(ctx context.Context, limit, offset int) (*CheckRunListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.runs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &CheckRunListResult{Items: res.Items, Total: res.Total}, nil
}

// GetRun returns a persisted check run by ID.
func (s *inspectionService) GetRun(ctx context.Context, id string) (*model.CheckRun, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

// ReportURL returns a presigned URL for a run's archived JSON report.
func (s *inspectionService) ReportURL(ctx context.Context, id string) (string, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return "", err
	}
	if run.ArchivePath == "" {
		return "", ErrNoArchive
	}
	return s.store.PresignGet(ctx, run.ArchivePath, reportURLExpiry)
}

// Report streams the archived JSON report for a run.
func (s *inspectionService) Report(ctx context.Context, id string) (io.ReadCloser, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.ArchivePath == "" {
		return nil, ErrNoArchive
	}
	rc, _, err := s.store.Get(ctx, run.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("fetch archived report: %w", err)
	}
	return rc, nil
}

// DeleteRun removes a run and its archived report. The archive is removed
// first; if that fails the row stays so the report is not orphaned.
func (s *inspectionService) DeleteRun(ctx context.Context, id string) error {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if run.ArchivePath != "" {
		if err := s.store.Delete(ctx, run.ArchivePath); err != nil {
			return fmt.Errorf("delete archived report: %w", err)
		}
	}
	if err := s.runs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete check run: %w", err)
	}
	return nil
}

func logArchiveFailure(runID string, err error) {
	entry := map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		"level":  "error",
		"msg":    "report_archive_failed",
		"run_id": runID,
		"error":  err.Error(),
	}
	if b, mErr := json.Marshal(entry); mErr == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
