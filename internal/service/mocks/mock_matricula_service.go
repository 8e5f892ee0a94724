package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multiplicadores/internal/model"
)

type MockMatriculaService struct {
	mock.Mock
}

func (m *MockMatriculaService) CodeFromCPF(rawCPF string) (string, string, error) {
	args := m.Called(rawCPF)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockMatriculaService) Enroll(ctx context.Context, rawCPF, holderName, birthDate string) (*model.Matricula, error) {
	args := m.Called(ctx, rawCPF, holderName, birthDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Matricula), args.Error(1)
}

func (m *MockMatriculaService) Validate(ctx context.Context, code string) (*model.Matricula, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Matricula), args.Error(1)
}

func (m *MockMatriculaService) List(ctx context.Context) ([]model.Matricula, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Matricula), args.Error(1)
}

func (m *MockMatriculaService) NormalizeCode(code string) string {
	args := m.Called(code)
	return args.String(0)
}

func (m *MockMatriculaService) ValidFormat(code string) bool {
	args := m.Called(code)
	return args.Bool(0)
}

func (m *MockMatriculaService) FormatHint() string {
	args := m.Called()
	return args.String(0)
}
