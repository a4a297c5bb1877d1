package mocks

import (
	"context"

	"schemawatch/internal/model"
	"schemawatch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCheckRunRepository struct {
	mock.Mock
}

func (m *MockCheckRunRepository) Create(ctx context.Context, run *model.CheckRun) (*model.CheckRun, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckRun), args.Error(1)
}

func (m *MockCheckRunRepository) FindByID(ctx context.Context, id string) (*model.CheckRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckRun), args.Error(1)
}

func (m *MockCheckRunRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.CheckRun], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.CheckRun]), args.Error(1)
}

func (m *MockCheckRunRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
