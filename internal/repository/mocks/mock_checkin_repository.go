package mocks

import (
	"context"
	"time"

	"multiplicadores/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockCheckinRepository struct {
	mock.Mock
}

func (m *MockCheckinRepository) Create(ctx context.Context, c *model.EventCheckin) (*model.EventCheckin, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventCheckin), args.Error(1)
}

func (m *MockCheckinRepository) FindByEventCPF(ctx context.Context, eventDate time.Time, cpf string) (*model.EventCheckin, error) {
	args := m.Called(ctx, eventDate, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventCheckin), args.Error(1)
}

func (m *MockCheckinRepository) Update(ctx context.Context, c *model.EventCheckin) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCheckinRepository) ListByEvent(ctx context.Context, eventDate time.Time) ([]model.EventCheckin, error) {
	args := m.Called(ctx, eventDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EventCheckin), args.Error(1)
}
