package mocks

import (
	"context"

	"schemawatch/internal/model"
	"schemawatch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockSchemaRepository struct {
	mock.Mock
}

func (m *MockSchemaRepository) TableExists(ctx context.Context, schema, table string) (bool, error) {
	args := m.Called(ctx, schema, table)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchemaRepository) Columns(ctx context.Context, schema, table string) ([]model.Column, error) {
	args := m.Called(ctx, schema, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Column), args.Error(1)
}

func (m *MockSchemaRepository) ProbeRow(ctx context.Context, schema, table string) (*repository.ProbeResult, error) {
	args := m.Called(ctx, schema, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ProbeResult), args.Error(1)
}

func (m *MockSchemaRepository) ListTables(ctx context.Context, schema string) ([]model.Table, error) {
	args := m.Called(ctx, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Table), args.Error(1)
}
