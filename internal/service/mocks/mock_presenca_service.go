package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
	"multiplicadores/internal/service"
)

type MockPresencaService struct {
	mock.Mock
}

func (m *MockPresencaService) Check(ctx context.Context, code string) (*model.Matricula, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Matricula), args.Error(1)
}

func (m *MockPresencaService) Register(ctx context.Context, code string, meta service.RequestMeta) (*service.RegisterResult, error) {
	args := m.Called(ctx, code, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisterResult), args.Error(1)
}

func (m *MockPresencaService) List(ctx context.Context, f repository.PresencaFilter, page, perPage int) (*service.PresencaListResult, error) {
	args := m.Called(ctx, f, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PresencaListResult), args.Error(1)
}

func (m *MockPresencaService) Export(ctx context.Context, f repository.PresencaFilter) ([]model.PresencaDetail, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PresencaDetail), args.Error(1)
}
