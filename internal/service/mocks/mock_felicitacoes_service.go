package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multiplicadores/internal/service"
)

type MockFelicitacoesService struct {
	mock.Mock
}

func (m *MockFelicitacoesService) Dispatch(ctx context.Context, items []service.BirthdayItem, dryRun bool) *service.DispatchResult {
	args := m.Called(ctx, items, dryRun)
	return args.Get(0).(*service.DispatchResult)
}
