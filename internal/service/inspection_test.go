package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"schemawatch/internal/config"
	"schemawatch/internal/model"
	"schemawatch/internal/repository"
	repoMocks "schemawatch/internal/repository/mocks"
	"schemawatch/internal/storage"
	storeMocks "schemawatch/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func checkCfg(tables ...string) config.CheckConfig {
	return config.CheckConfig{Schema: "public", Tables: tables}
}

func TestInspectionService_Inspect(t *testing.T) {
	ctx := context.Background()

	t.Run("probes tables in configured order", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mSchema.On("ProbeRow", ctx, "public", "users").
			Return(&repository.ProbeResult{ColumnNames: []string{"id", "email"}, RowFound: true}, nil)
		mSchema.On("ProbeRow", ctx, "public", "events").
			Return(&repository.ProbeResult{ColumnNames: []string{"id", "kind"}, RowFound: false}, nil)

		svc := NewInspectionService(mSchema, nil, nil, checkCfg("users", "events"), nil)

		results, err := svc.Inspect(ctx)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "users", results[0].Table)
		assert.Equal(t, model.TableStatusOK, results[0].Status)
		assert.Equal(t, []string{"id", "email"}, results[0].Columns)
		assert.Equal(t, "events", results[1].Table)
		assert.Equal(t, model.TableStatusEmpty, results[1].Status)
		assert.False(t, results[1].RowFound)
		mSchema.AssertExpectations(t)
	})

	t.Run("probe failure is recorded and does not stop the pass", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mSchema.On("ProbeRow", ctx, "public", "ghost").
			Return(nil, errors.New(`relation "public.ghost" does not exist`))
		mSchema.On("ProbeRow", ctx, "public", "users").
			Return(&repository.ProbeResult{ColumnNames: []string{"id"}, RowFound: true}, nil)

		svc := NewInspectionService(mSchema, nil, nil, checkCfg("ghost", "users"), nil)

		results, err := svc.Inspect(ctx)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, model.TableStatusError, results[0].Status)
		assert.Contains(t, results[0].Error, "does not exist")
		assert.Empty(t, results[0].Columns)
		assert.Equal(t, model.TableStatusOK, results[1].Status)
		mSchema.AssertExpectations(t)
	})

	t.Run("timed-out probe is recorded and the pass continues", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mSchema.On("ProbeRow", mock.Anything, "public", "slow").
			Run(func(args mock.Arguments) {
				probeCtx := args.Get(0).(context.Context)
				_, hasDeadline := probeCtx.Deadline()
				assert.True(t, hasDeadline)
				<-probeCtx.Done()
			}).
			Return(nil, context.DeadlineExceeded)
		mSchema.On("ProbeRow", mock.Anything, "public", "users").
			Return(&repository.ProbeResult{ColumnNames: []string{"id"}, RowFound: true}, nil)

		cfg := checkCfg("slow", "users")
		cfg.ProbeTimeoutSec = 1
		svc := NewInspectionService(mSchema, nil, nil, cfg, nil)

		results, err := svc.Inspect(ctx)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, model.TableStatusError, results[0].Status)
		assert.Contains(t, results[0].Error, "deadline exceeded")
		assert.Equal(t, model.TableStatusOK, results[1].Status)
		mSchema.AssertExpectations(t)
	})

	t.Run("cancelled context stops the pass", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		svc := NewInspectionService(mSchema, nil, nil, checkCfg("users"), nil)

		results, err := svc.Inspect(cancelled)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
		mSchema.AssertNotCalled(t, "ProbeRow", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInspectionService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("persists run with archive path", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)

		mSchema.On("ProbeRow", ctx, "public", "users").
			Return(&repository.ProbeResult{ColumnNames: []string{"id"}, RowFound: true}, nil)
		mSchema.On("ProbeRow", ctx, "public", "ghost").
			Return(nil, errors.New("boom"))

		mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return len(key) > len("reports/.json")
		}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.ContentType == "application/json" && opt.Size > 0
		})).Return(storage.ObjectInfo{}, nil)

		mRuns.On("Create", ctx, mock.MatchedBy(func(run *model.CheckRun) bool {
			return run.TablesChecked == 2 && run.Failures == 1 && run.ArchivePath != ""
		})).Return(&model.CheckRun{ID: "stored-id", Failures: 1}, nil)

		svc := NewInspectionService(mSchema, mRuns, mStore, checkCfg("users", "ghost"), nil)

		run, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, "stored-id", run.ID)
		mSchema.AssertExpectations(t)
		mRuns.AssertExpectations(t)
		mStore.AssertExpectations(t)
	})

	t.Run("archive failure is swallowed and leaves path empty", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)

		mSchema.On("ProbeRow", ctx, "public", "users").
			Return(&repository.ProbeResult{ColumnNames: []string{"id"}, RowFound: true}, nil)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("bucket gone"))
		mRuns.On("Create", ctx, mock.MatchedBy(func(run *model.CheckRun) bool {
			return run.ArchivePath == ""
		})).Return(&model.CheckRun{ID: "stored-id"}, nil)

		svc := NewInspectionService(mSchema, mRuns, mStore, checkCfg("users"), nil)

		run, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, "stored-id", run.ID)
		mRuns.AssertExpectations(t)
	})

	t.Run("persist failure is returned", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)

		mSchema.On("ProbeRow", ctx, "public", "users").
			Return(&repository.ProbeResult{ColumnNames: []string{"id"}, RowFound: true}, nil)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, nil)
		mRuns.On("Create", ctx, mock.Anything).
			Return(nil, errors.New("db fail"))

		svc := NewInspectionService(mSchema, mRuns, mStore, checkCfg("users"), nil)

		_, err := svc.Run(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persist check run")
	})
}

func TestInspectionService_DescribeTable(t *testing.T) {
	ctx := context.Background()

	t.Run("existing table", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mSchema.On("TableExists", ctx, "public", "users").Return(true, nil)
		mSchema.On("Columns", ctx, "public", "users").Return([]model.Column{
			{Name: "id", DataType: "uuid", Position: 1},
		}, nil)

		svc := NewInspectionService(mSchema, nil, nil, checkCfg(), nil)

		detail, err := svc.DescribeTable(ctx, "users")

		require.NoError(t, err)
		assert.True(t, detail.Exists)
		assert.Len(t, detail.Columns, 1)
	})

	t.Run("missing table", func(t *testing.T) {
		mSchema := new(repoMocks.MockSchemaRepository)
		mSchema.On("TableExists", ctx, "public", "ghost").Return(false, nil)

		svc := NewInspectionService(mSchema, nil, nil, checkCfg(), nil)

		_, err := svc.DescribeTable(ctx, "ghost")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		svc := NewInspectionService(new(repoMocks.MockSchemaRepository), nil, nil, checkCfg(), nil)

		_, err := svc.DescribeTable(ctx, "")
		assert.ErrorIs(t, err, ErrTableNameRequired)
	})
}

func TestInspectionService_GetRun(t *testing.T) {
	ctx := context.Background()

	t.Run("not found is translated", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mRuns.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		svc := NewInspectionService(nil, mRuns, nil, checkCfg(), nil)

		_, err := svc.GetRun(ctx, "missing")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewInspectionService(nil, new(repoMocks.MockCheckRunRepository), nil, checkCfg(), nil)

		_, err := svc.GetRun(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestInspectionService_ListRuns(t *testing.T) {
	ctx := context.Background()

	mRuns := new(repoMocks.MockCheckRunRepository)
	mRuns.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.CheckRun]{
			Items: []model.CheckRun{{ID: "run-1"}},
			Total: 1,
		}, nil)

	svc := NewInspectionService(nil, mRuns, nil, checkCfg(), nil)

	// Non-positive limit and negative offset fall back to defaults.
	res, err := svc.ListRuns(ctx, 0, -5)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	mRuns.AssertExpectations(t)
}

func TestInspectionService_ReportURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns archive path", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-1").
			Return(&model.CheckRun{ID: "run-1", ArchivePath: "reports/run-1.json"}, nil)
		mStore.On("PresignGet", ctx, "reports/run-1.json", reportURLExpiry).
			Return("https://example.test/presigned", nil)

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		u, err := svc.ReportURL(ctx, "run-1")

		require.NoError(t, err)
		assert.Equal(t, "https://example.test/presigned", u)
	})

	t.Run("missing archive", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mRuns.On("FindByID", ctx, "run-2").
			Return(&model.CheckRun{ID: "run-2"}, nil)

		svc := NewInspectionService(nil, mRuns, new(storeMocks.MockStorage), checkCfg(), nil)

		_, err := svc.ReportURL(ctx, "run-2")
		assert.ErrorIs(t, err, ErrNoArchive)
	})
}

func TestInspectionService_Report(t *testing.T) {
	ctx := context.Background()

	t.Run("streams the archived report", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-1").
			Return(&model.CheckRun{ID: "run-1", ArchivePath: "reports/run-1.json"}, nil)
		mStore.On("Get", ctx, "reports/run-1.json").
			Return(io.NopCloser(strings.NewReader(`{"id":"run-1"}`)), storage.ObjectInfo{}, nil)

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		rc, err := svc.Report(ctx, "run-1")

		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"run-1"}`, string(body))
		mStore.AssertExpectations(t)
	})

	t.Run("missing archive", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-2").
			Return(&model.CheckRun{ID: "run-2"}, nil)

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		_, err := svc.Report(ctx, "run-2")

		assert.ErrorIs(t, err, ErrNoArchive)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-3").
			Return(&model.CheckRun{ID: "run-3", ArchivePath: "reports/run-3.json"}, nil)
		mStore.On("Get", ctx, "reports/run-3.json").
			Return(nil, storage.ObjectInfo{}, errors.New("object gone"))

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		_, err := svc.Report(ctx, "run-3")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch archived report")
	})
}

func TestInspectionService_DeleteRun(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the archive and the row", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-1").
			Return(&model.CheckRun{ID: "run-1", ArchivePath: "reports/run-1.json"}, nil)
		mStore.On("Delete", ctx, "reports/run-1.json").Return(nil)
		mRuns.On("Delete", ctx, "run-1").Return(nil)

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		err := svc.DeleteRun(ctx, "run-1")

		require.NoError(t, err)
		mRuns.AssertExpectations(t)
		mStore.AssertExpectations(t)
	})

	t.Run("archive delete failure keeps the row", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-2").
			Return(&model.CheckRun{ID: "run-2", ArchivePath: "reports/run-2.json"}, nil)
		mStore.On("Delete", ctx, "reports/run-2.json").Return(errors.New("bucket gone"))

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		err := svc.DeleteRun(ctx, "run-2")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete archived report")
		mRuns.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("run without archive skips storage", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mStore := new(storeMocks.MockStorage)
		mRuns.On("FindByID", ctx, "run-3").
			Return(&model.CheckRun{ID: "run-3"}, nil)
		mRuns.On("Delete", ctx, "run-3").Return(nil)

		svc := NewInspectionService(nil, mRuns, mStore, checkCfg(), nil)

		err := svc.DeleteRun(ctx, "run-3")

		require.NoError(t, err)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing run", func(t *testing.T) {
		mRuns := new(repoMocks.MockCheckRunRepository)
		mRuns.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		svc := NewInspectionService(nil, mRuns, new(storeMocks.MockStorage), checkCfg(), nil)

		err := svc.DeleteRun(ctx, "missing")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}
