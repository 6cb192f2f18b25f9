package domain

import (
	"context"

	"github.com/google/uuid"
)

type Reservation struct {
	ID        int
	ShowingID int
	UserID    uuid.UUID
	Seat      SeatCoordinate
}

type ReservationRepository interface {
	GetReservation(ctx context.Context, id int) (*Reservation, error)
	ListReservationsForShowing(ctx context.Context, showingID int) ([]Reservation, error)
	CreateReservation(ctx context.Context, reservation *Reservation) error
	UpdateReservationSeat(ctx context.Context, id int, seat SeatCoordinate) error
	DeleteReservation(ctx context.Context, id int) error
}
