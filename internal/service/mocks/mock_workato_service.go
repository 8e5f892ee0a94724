package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"multiplicadores/internal/analytics"
)

type MockWorkatoService struct {
	mock.Mock
}

func (m *MockWorkatoService) Report(ctx context.Context, rows []map[string]any, dedup *bool) (*analytics.Report, error) {
	args := m.Called(ctx, rows, dedup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Report), args.Error(1)
}

func (m *MockWorkatoService) Proxy(ctx context.Context, body []byte) (json.RawMessage, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
