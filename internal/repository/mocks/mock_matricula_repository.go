package mocks

import (
	"context"

	"multiplicadores/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockMatriculaRepository struct {
	mock.Mock
}

func (m *MockMatriculaRepository) Create(ctx context.Context, ma *model.Matricula) (*model.Matricula, error) {
	args := m.Called(ctx, ma)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Matricula), args.Error(1)
}

func (m *MockMatriculaRepository) FindByCode(ctx context.Context, code string) (*model.Matricula, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Matricula), args.Error(1)
}

func (m *MockMatriculaRepository) FindByCPF(ctx context.Context, cpf string) (*model.Matricula, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Matricula), args.Error(1)
}

func (m *MockMatriculaRepository) List(ctx context.Context) ([]model.Matricula, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Matricula), args.Error(1)
}

func (m *MockMatriculaRepository) UpdateStatus(ctx context.Context, code, status string) error {
	args := m.Called(ctx, code, status)
	return args.Error(0)
}
