package mocks

import (
	"context"

	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockPresencaRepository struct {
	mock.Mock
}

func (m *MockPresencaRepository) Create(ctx context.Context, p *model.Presenca) (*model.Presenca, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Presenca), args.Error(1)
}

func (m *MockPresencaRepository) List(ctx context.Context, f repository.PresencaFilter, pq repository.PageQuery) (*repository.PageResult[model.PresencaDetail], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.PresencaDetail]), args.Error(1)
}

func (m *MockPresencaRepository) Export(ctx context.Context, f repository.PresencaFilter) ([]model.PresencaDetail, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PresencaDetail), args.Error(1)
}
