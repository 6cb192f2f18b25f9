package mocks

import (
	"context"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatMapCache struct {
	mock.Mock
}

func (m *MockSeatMapCache) Get(ctx context.Context, showingID int) (*domain.SeatMap, bool, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.SeatMap), args.Bool(1), args.Error(2)
}

func (m *MockSeatMapCache) Set(ctx context.Context, showingID int, seats *domain.SeatMap) error {
	args := m.Called(ctx, showingID, seats)
	return args.Error(0)
}

func (m *MockSeatMapCache) Invalidate(ctx context.Context, showingID int) error {
	args := m.Called(ctx, showingID)
	return args.Error(0)
}
