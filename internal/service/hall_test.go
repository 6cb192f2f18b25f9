package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/metinatakli/cinema-operations/internal/repository"
	"github.com/stretchr/testify/suite"
)

type HallServiceTestSuite struct {
	suite.Suite
	store *repository.MemoryStore
	svc   *HallService
}

func (s *HallServiceTestSuite) SetupTest() {
	s.store = repository.NewMemoryStore()
	s.svc = NewHallService(s.store, s.store, s.store, newTestLogger())
}

func TestHallServiceSuite(t *testing.T) {
	suite.Run(t, new(HallServiceTestSuite))
}

func (s *HallServiceTestSuite) TestCreateHall() {
	tests := []struct {
		name    string
		hall    string
		rows    int
		seats   int
		wantErr error
	}{
		{name: "valid layout", hall: "Hall A", rows: 4, seats: 12},
		{name: "no rows", hall: "Hall B", rows: 0, seats: 12, wantErr: domain.ErrInvalidLayout},
		{name: "too many rows", hall: "Hall C", rows: 27, seats: 12, wantErr: domain.ErrInvalidLayout},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			hall, err := s.svc.CreateHall(context.Background(), tt.hall, tt.rows, tt.seats)

			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				s.Nil(hall)
				return
			}

			s.Require().NoError(err)

			stored, err := s.store.GetHall(context.Background(), hall.ID)
			s.Require().NoError(err)
			s.Equal(tt.rows, stored.Seats.RowCount())
			s.Equal(tt.rows*tt.seats, stored.Seats.FreeSeats())
		})
	}

	_, err := s.svc.CreateHall(context.Background(), "Hall A", 2, 2)
	s.ErrorIs(err, repository.ErrHallNameTaken)
}

func (s *HallServiceTestSuite) TestDeleteHallCascades() {
	hall, err := s.svc.CreateHall(context.Background(), "Hall A", 2, 2)
	s.Require().NoError(err)

	movieID := s.store.PutMovie(domain.Movie{Title: "Up", Duration: "1.36"})
	showingID := createTestShowing(s.T(), s.store, hall.ID, movieID, "12:00")

	bookings := NewBookingService(s.store, s.store, s.store, s.store, newTestLogger())
	reservationID, err := bookings.BookSeat(context.Background(), showingID, seat("A", 1), uuid.New())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteHall(context.Background(), hall.ID))

	_, err = s.store.GetShowing(context.Background(), showingID)
	s.ErrorIs(err, domain.ErrRecordNotFound)

	_, err = s.store.GetReservation(context.Background(), reservationID)
	s.ErrorIs(err, domain.ErrRecordNotFound)

	err = s.svc.DeleteHall(context.Background(), hall.ID)
	s.ErrorIs(err, domain.ErrHallNotFound)
}

func (s *HallServiceTestSuite) TestDeleteHallDropsCachedSeatMaps() {
	cache := newMemorySeatMapCache()
	svc := NewHallService(s.store, s.store, s.store, newTestLogger(), WithHallSeatMapCache(cache))
	bookings := NewBookingService(s.store, s.store, s.store, s.store, newTestLogger(), WithSeatMapCache(cache))

	hall, err := svc.CreateHall(context.Background(), "Hall A", 1, 3)
	s.Require().NoError(err)
	other, err := svc.CreateHall(context.Background(), "Hall B", 1, 3)
	s.Require().NoError(err)

	movieID := s.store.PutMovie(domain.Movie{Title: "Up", Duration: "1.36"})
	early := createTestShowing(s.T(), s.store, hall.ID, movieID, "12:00")
	late := createTestShowing(s.T(), s.store, hall.ID, movieID, "18:00")
	elsewhere := createTestShowing(s.T(), s.store, other.ID, movieID, "12:00")

	for _, id := range []int{early, late, elsewhere} {
		_, err := bookings.SeatMap(context.Background(), id)
		s.Require().NoError(err)
		s.Require().True(cache.has(id))
	}

	s.Require().NoError(svc.DeleteHall(context.Background(), hall.ID))

	s.False(cache.has(early))
	s.False(cache.has(late))
	s.True(cache.has(elsewhere))

	_, err = bookings.SeatMap(context.Background(), early)
	s.ErrorIs(err, domain.ErrShowingNotFound)
}
