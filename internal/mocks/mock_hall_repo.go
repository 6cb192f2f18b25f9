package mocks

import (
	"context"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockHallRepo struct {
	mock.Mock
	domain.HallRepository
}

func (m *MockHallRepo) CreateHall(ctx context.Context, hall *domain.Hall) error {
	args := m.Called(ctx, hall)
	return args.Error(0)
}

func (m *MockHallRepo) GetHall(ctx context.Context, id int) (*domain.Hall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hall), args.Error(1)
}

func (m *MockHallRepo) DeleteHall(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHallRepo) LoadSeatMap(ctx context.Context, hallID int) (*domain.SeatMap, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatMap), args.Error(1)
}

func (m *MockHallRepo) SaveSeatMap(ctx context.Context, hallID int, seats *domain.SeatMap) error {
	args := m.Called(ctx, hallID, seats)
	return args.Error(0)
}
