package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metinatakli/cinema-operations/internal/domain"
)

// HallService owns the lifecycle of a hall's seat layout.
type HallService struct {
	tx       domain.Transactor
	halls    domain.HallRepository
	showings domain.ShowingRepository
	cache    SeatMapCache
	logger   *slog.Logger
}

type HallOption func(*HallService)

// WithHallSeatMapCache drops the cached seat maps of a deleted hall's
// showings.
func WithHallSeatMapCache(cache SeatMapCache) HallOption {
	return func(s *HallService) {
		s.cache = cache
	}
}

func NewHallService(
	tx domain.Transactor,
	halls domain.HallRepository,
	showings domain.ShowingRepository,
	logger *slog.Logger,
	opts ...HallOption) *HallService {

	s := &HallService{
		tx:       tx,
		halls:    halls,
		showings: showings,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateHall stores a hall with a fresh layout where every seat is free.
func (s *HallService) CreateHall(ctx context.Context, name string, rows, seatsPerRow int) (*domain.Hall, error) {
	seats, err := domain.CreateLayout(rows, seatsPerRow)
	if err != nil {
		return nil, err
	}

	hall := &domain.Hall{
		Name:      name,
		RowCount:  rows,
		SeatCount: seatsPerRow,
		Seats:     seats,
	}

	err = s.halls.CreateHall(ctx, hall)
	if err != nil {
		return nil, err
	}

	s.logger.Info("hall created", "hall_id", hall.ID, "rows", rows, "seats", seatsPerRow)

	return hall, nil
}

// DeleteHall removes the hall, its layout and its showings. It holds the
// hall's lock and the lock of every showing in it, so no admission,
// booking or seat map fill runs against the hall while it goes away.
func (s *HallService) DeleteHall(ctx context.Context, hallID int) error {
	var showingIDs []int

	err := s.tx.WithinHall(ctx, hallID, func(ctx context.Context) error {
		var err error

		showingIDs, err = s.showings.ListHallShowingIDs(ctx, hallID)
		if err != nil {
			return err
		}

		return s.withinShowings(ctx, showingIDs, func(ctx context.Context) error {
			err := s.halls.DeleteHall(ctx, hallID)
			if errors.Is(err, domain.ErrRecordNotFound) {
				return domain.WrapError(domain.KindHallNotFound, err, "hall %d", hallID)
			}

			return err
		})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, showingIDs)
	s.logger.Info("hall deleted", "hall_id", hallID, "showings", len(showingIDs))

	return nil
}

// withinShowings nests the showing locks in ascending id order.
func (s *HallService) withinShowings(ctx context.Context, ids []int, fn func(ctx context.Context) error) error {
	if len(ids) == 0 {
		return fn(ctx)
	}

	return s.tx.WithinShowing(ctx, ids[0], func(ctx context.Context) error {
		return s.withinShowings(ctx, ids[1:], fn)
	})
}

func (s *HallService) invalidate(ctx context.Context, showingIDs []int) {
	if s.cache == nil {
		return
	}

	for _, id := range showingIDs {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn("seat map cache invalidation failed", "showing_id", id, "error", err)
		}
	}
}
