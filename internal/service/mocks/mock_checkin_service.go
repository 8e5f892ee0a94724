package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"multiplicadores/internal/model"
	"multiplicadores/internal/service"
)

type MockCheckinService struct {
	mock.Mock
}

func (m *MockCheckinService) Submit(ctx context.Context, in service.CheckinInput) (*service.CheckinResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckinResult), args.Error(1)
}

func (m *MockCheckinService) ListByEvent(ctx context.Context, eventDate time.Time) ([]model.EventCheckin, error) {
	args := m.Called(ctx, eventDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EventCheckin), args.Error(1)
}
