package domain

import "context"

type Hall struct {
	ID        int
	Name      string
	RowCount  int
	SeatCount int
	Seats     *SeatMap
}

// HallRepository stores halls together with their seat layout. The layout
// lives and dies with the hall.
type HallRepository interface {
	CreateHall(ctx context.Context, hall *Hall) error
	GetHall(ctx context.Context, id int) (*Hall, error)
	DeleteHall(ctx context.Context, id int) error
	LoadSeatMap(ctx context.Context, hallID int) (*SeatMap, error)
	SaveSeatMap(ctx context.Context, hallID int, seats *SeatMap) error
}
