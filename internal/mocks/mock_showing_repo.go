package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowingRepo struct {
	mock.Mock
	domain.ShowingRepository
}

func (m *MockShowingRepo) GetShowing(ctx context.Context, id int) (*domain.Showing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Showing), args.Error(1)
}

func (m *MockShowingRepo) ListShowings(ctx context.Context, hallID int, date time.Time) ([]domain.Showing, error) {
	args := m.Called(ctx, hallID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Showing), args.Error(1)
}

func (m *MockShowingRepo) ListHallShowingIDs(ctx context.Context, hallID int) ([]int, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockShowingRepo) CreateShowing(ctx context.Context, showing *domain.Showing) error {
	args := m.Called(ctx, showing)
	return args.Error(0)
}

func (m *MockShowingRepo) UpdateShowing(ctx context.Context, showing *domain.Showing) error {
	args := m.Called(ctx, showing)
	return args.Error(0)
}

func (m *MockShowingRepo) LoadShowingSeatMap(ctx context.Context, showingID int) (*domain.SeatMap, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatMap), args.Error(1)
}

func (m *MockShowingRepo) SaveShowingSeatMap(ctx context.Context, showingID int, seats *domain.SeatMap) error {
	args := m.Called(ctx, showingID, seats)
	return args.Error(0)
}
