package mocks

import (
	"context"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepo struct {
	mock.Mock
	domain.ReservationRepository
}

func (m *MockReservationRepo) GetReservation(ctx context.Context, id int) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepo) ListReservationsForShowing(ctx context.Context, showingID int) ([]domain.Reservation, error) {
	args := m.Called(ctx, showingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepo) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepo) UpdateReservationSeat(ctx context.Context, id int, seat domain.SeatCoordinate) error {
	args := m.Called(ctx, id, seat)
	return args.Error(0)
}

func (m *MockReservationRepo) DeleteReservation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
