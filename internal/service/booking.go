package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-operations/internal/domain"
	"go.opentelemetry.io/otel/metric"
)

// SeatMapCache is the read-side cache for showing seat maps.
type SeatMapCache interface {
	Get(ctx context.Context, showingID int) (*domain.SeatMap, bool, error)
	Set(ctx context.Context, showingID int, seats *domain.SeatMap) error
	Invalidate(ctx context.Context, showingID int) error
}

// BookingService books, rebooks and releases single seats of a showing.
// Each operation runs as one unit of work under the showing's lock: the
// seat map and the reservation rows are written together or not at all.
type BookingService struct {
	tx           domain.Transactor
	halls        domain.HallRepository
	showings     domain.ShowingRepository
	reservations domain.ReservationRepository
	cache        SeatMapCache
	logger       *slog.Logger
	metrics      instruments
}

type BookingOption func(*BookingService)

func WithSeatMapCache(cache SeatMapCache) BookingOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithBookingMeterProvider(provider metric.MeterProvider) BookingOption {
	return func(s *BookingService) {
		s.metrics = newInstruments(provider)
	}
}

func NewBookingService(
	tx domain.Transactor,
	halls domain.HallRepository,
	showings domain.ShowingRepository,
	reservations domain.ReservationRepository,
	logger *slog.Logger,
	opts ...BookingOption) *BookingService {

	s := &BookingService{
		tx:           tx,
		halls:        halls,
		showings:     showings,
		reservations: reservations,
		logger:       logger,
		metrics:      newInstruments(nil),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BookSeat reserves one seat of a showing for a user and returns the new
// reservation id.
func (s *BookingService) BookSeat(
	ctx context.Context,
	showingID int,
	seat domain.SeatCoordinate,
	userID uuid.UUID) (int, error) {

	logger := s.logger.With("showing_id", showingID, "seat", seat.String())

	reservation := domain.Reservation{
		ShowingID: showingID,
		UserID:    userID,
		Seat:      seat,
	}

	err := s.tx.WithinShowing(ctx, showingID, func(ctx context.Context) error {
		showing, err := s.getShowing(ctx, showingID)
		if err != nil {
			return err
		}

		seats, err := s.loadSeats(ctx, showing)
		if err != nil {
			return err
		}

		err = s.claimSeat(ctx, logger, seats, showingID, seat, 0)
		if err != nil {
			return err
		}

		err = s.showings.SaveShowingSeatMap(ctx, showingID, seats)
		if err != nil {
			return err
		}

		return s.reservations.CreateReservation(ctx, &reservation)
	})

	record(ctx, s.metrics.bookings, "book", err)

	if err != nil {
		s.logFailure(logger, "seat booking failed", err)
		return 0, err
	}

	s.invalidate(ctx, showingID)
	logger.Info("seat booked", "reservation_id", reservation.ID)

	return reservation.ID, nil
}

// RebookSeat moves a reservation to another seat of the same showing.
func (s *BookingService) RebookSeat(ctx context.Context, reservationID int, seat domain.SeatCoordinate) error {
	current, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	showingID := current.ShowingID
	logger := s.logger.With("showing_id", showingID, "reservation_id", reservationID, "seat", seat.String())

	err = s.tx.WithinShowing(ctx, showingID, func(ctx context.Context) error {
		// Re-read under the lock; a concurrent release may have won.
		reservation, err := s.getReservation(ctx, reservationID)
		if err != nil {
			return err
		}

		showing, err := s.getShowing(ctx, showingID)
		if err != nil {
			return err
		}

		seats, err := s.loadSeats(ctx, showing)
		if err != nil {
			return err
		}

		err = seats.Release(reservation.Seat)
		if err != nil {
			return domain.WrapError(domain.KindSeatMapInvalid, err, "stored seat %s of reservation %d", reservation.Seat, reservationID)
		}

		err = s.claimSeat(ctx, logger, seats, showingID, seat, reservationID)
		if err != nil {
			return err
		}

		err = s.showings.SaveShowingSeatMap(ctx, showingID, seats)
		if err != nil {
			return err
		}

		err = s.reservations.UpdateReservationSeat(ctx, reservationID, seat)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.WrapError(domain.KindReservationNotFound, err, "reservation %d", reservationID)
		}

		return err
	})

	record(ctx, s.metrics.bookings, "rebook", err)

	if err != nil {
		s.logFailure(logger, "seat rebooking failed", err)
		return err
	}

	s.invalidate(ctx, showingID)
	logger.Info("seat rebooked")

	return nil
}

// ReleaseSeat frees the reservation's seat and deletes the reservation.
func (s *BookingService) ReleaseSeat(ctx context.Context, reservationID int) error {
	current, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return err
	}

	showingID := current.ShowingID
	logger := s.logger.With("showing_id", showingID, "reservation_id", reservationID)

	err = s.tx.WithinShowing(ctx, showingID, func(ctx context.Context) error {
		reservation, err := s.getReservation(ctx, reservationID)
		if err != nil {
			return err
		}

		showing, err := s.getShowing(ctx, showingID)
		if err != nil {
			return err
		}

		seats, err := s.loadSeats(ctx, showing)
		if err != nil {
			return err
		}

		err = seats.Release(reservation.Seat)
		if err != nil {
			return domain.WrapError(domain.KindSeatMapInvalid, err, "stored seat %s of reservation %d", reservation.Seat, reservationID)
		}

		err = s.showings.SaveShowingSeatMap(ctx, showingID, seats)
		if err != nil {
			return err
		}

		err = s.reservations.DeleteReservation(ctx, reservationID)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.WrapError(domain.KindReservationNotFound, err, "reservation %d", reservationID)
		}

		return err
	})

	record(ctx, s.metrics.bookings, "release", err)

	if err != nil {
		s.logFailure(logger, "seat release failed", err)
		return err
	}

	s.invalidate(ctx, showingID)
	logger.Info("seat released")

	return nil
}

// SeatMap returns the current seat map of a showing. Without a cache it
// reads committed state and takes no lock.
//
// A cache miss is filled under the showing's lock. Mutations invalidate
// after they commit and release that lock, so a fill can never land after
// the invalidation of a newer map.
func (s *BookingService) SeatMap(ctx context.Context, showingID int) (*domain.SeatMap, error) {
	if s.cache == nil {
		return s.readSeats(ctx, showingID)
	}

	seats, ok, err := s.cache.Get(ctx, showingID)
	if err != nil {
		s.logger.Warn("seat map cache read failed", "showing_id", showingID, "error", err)
	} else if ok {
		return seats, nil
	}

	err = s.tx.WithinShowing(ctx, showingID, func(ctx context.Context) error {
		seats, err = s.readSeats(ctx, showingID)
		if err != nil {
			return err
		}

		if err := s.cache.Set(ctx, showingID, seats); err != nil {
			s.logger.Warn("seat map cache write failed", "showing_id", showingID, "error", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return seats, nil
}

func (s *BookingService) readSeats(ctx context.Context, showingID int) (*domain.SeatMap, error) {
	showing, err := s.getShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	return s.loadSeats(ctx, showing)
}

// claimSeat validates the coordinate, checks that no other reservation of
// the showing holds it and marks it on the map. exceptID skips the
// reservation being moved.
func (s *BookingService) claimSeat(
	ctx context.Context,
	logger *slog.Logger,
	seats *domain.SeatMap,
	showingID int,
	seat domain.SeatCoordinate,
	exceptID int) error {

	err := seats.ValidateCoordinate(seat)
	if err != nil {
		return seatInputError(err)
	}

	holders, err := s.reservations.ListReservationsForShowing(ctx, showingID)
	if err != nil {
		return err
	}

	for _, holder := range holders {
		if holder.ID != exceptID && holder.Seat == seat {
			return domain.NewError(domain.KindSeatAlreadyOccupied, "seat %s is held by reservation %d", seat, holder.ID)
		}
	}

	err = seats.Occupy(seat)
	if err != nil {
		if domain.KindOf(err) == domain.KindSeatAlreadyOccupied {
			logger.Warn("seat marked on the map without a reservation")
		}

		return err
	}

	return nil
}

// loadSeats returns the showing's own seat map, or a copy of its hall's
// layout if nothing has been booked for the showing yet.
func (s *BookingService) loadSeats(ctx context.Context, showing *domain.Showing) (*domain.SeatMap, error) {
	seats, err := s.showings.LoadShowingSeatMap(ctx, showing.ID)
	if err == nil {
		return seats, nil
	}

	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	seats, err = s.halls.LoadSeatMap(ctx, showing.HallID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.WrapError(domain.KindHallNotFound, err, "hall %d of showing %d", showing.HallID, showing.ID)
		}

		return nil, err
	}

	return seats, nil
}

func (s *BookingService) getShowing(ctx context.Context, id int) (*domain.Showing, error) {
	showing, err := s.showings.GetShowing(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.WrapError(domain.KindShowingNotFound, err, "showing %d", id)
		}

		return nil, err
	}

	return showing, nil
}

func (s *BookingService) getReservation(ctx context.Context, id int) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.WrapError(domain.KindReservationNotFound, err, "reservation %d", id)
		}

		return nil, err
	}

	return reservation, nil
}

func (s *BookingService) invalidate(ctx context.Context, showingID int) {
	if s.cache == nil {
		return
	}

	err := s.cache.Invalidate(ctx, showingID)
	if err != nil {
		s.logger.Warn("seat map cache invalidation failed", "showing_id", showingID, "error", err)
	}
}

func (s *BookingService) logFailure(logger *slog.Logger, msg string, err error) {
	switch domain.KindOf(err).Category() {
	case domain.CategoryInputInvalid, domain.CategoryResourceConflict, domain.CategoryNotFound:
		logger.Warn(msg, "error", err)
	default:
		logger.Error(msg, "error", err)
	}
}

func seatInputError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindUnknownRow:
		return domain.WrapError(domain.KindSeatRowInvalid, err, "")
	case domain.KindSeatOutOfRange:
		return domain.WrapError(domain.KindSeatNumInvalid, err, "")
	default:
		return err
	}
}
