package mocks

import (
	"context"
	"io"

	"schemawatch/internal/model"
	"schemawatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockInspectionService struct {
	mock.Mock
}

func (m *MockInspectionService) Inspect(ctx context.Context) ([]model.TableResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TableResult), args.Error(1)
}

func (m *MockInspectionService) Run(ctx context.Context) (*model.CheckRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckRun), args.Error(1)
}

func (m *MockInspectionService) ListTables(ctx context.Context) ([]model.Table, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Table), args.Error(1)
}

func (m *MockInspectionService) DescribeTable(ctx context.Context, table string) (*model.TableDetail, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TableDetail), args.Error(1)
}

func (m *MockInspectionService) ListRuns(ctx context.Context, limit, offset int) (*service.CheckRunListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckRunListResult), args.Error(1)
}

func (m *MockInspectionService) GetRun(ctx context.Context, id string) (*model.CheckRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckRun), args.Error(1)
}

func (m *MockInspectionService) ReportURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockInspectionService) Report(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockInspectionService) DeleteRun(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
