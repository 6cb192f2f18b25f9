package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/domain"
)

const reservationSeatConstraint = "reservations_showing_seat_key"

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

func (p *PostgresReservationRepository) GetReservation(ctx context.Context, id int) (*domain.Reservation, error) {
	query := `
		SELECT id, showing_id, user_id, seat_row, seat_num
		FROM reservations
		WHERE id = $1
	`

	var reservation domain.Reservation

	err := conn(ctx, p.db).QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.ShowingID,
		&reservation.UserID,
		&reservation.Seat.Row,
		&reservation.Seat.Seat,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &reservation, nil
}

func (p *PostgresReservationRepository) ListReservationsForShowing(
	ctx context.Context,
	showingID int) ([]domain.Reservation, error) {

	query := `
		SELECT id, showing_id, user_id, seat_row, seat_num
		FROM reservations
		WHERE showing_id = $1
		ORDER BY id
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, showingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)

	for rows.Next() {
		var reservation domain.Reservation

		err = rows.Scan(
			&reservation.ID,
			&reservation.ShowingID,
			&reservation.UserID,
			&reservation.Seat.Row,
			&reservation.Seat.Seat,
		)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, reservation)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (p *PostgresReservationRepository) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (showing_id, user_id, seat_row, seat_num)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := conn(ctx, p.db).QueryRow(
		ctx,
		query,
		reservation.ShowingID,
		reservation.UserID,
		reservation.Seat.Row,
		reservation.Seat.Seat).Scan(&reservation.ID)

	return mapReservationErr(err)
}

func (p *PostgresReservationRepository) UpdateReservationSeat(ctx context.Context, id int, seat domain.SeatCoordinate) error {
	query := `
		UPDATE reservations
		SET seat_row = $1, seat_num = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := conn(ctx, p.db).Exec(ctx, query, seat.Row, seat.Seat, id)
	if err != nil {
		return mapReservationErr(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) DeleteReservation(ctx context.Context, id int) error {
	tag, err := conn(ctx, p.db).Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// mapReservationErr turns the unique (showing, row, seat) index violation
// into the domain conflict. It only fires if two writers got past the row
// lock, so it is the last line behind the transactor.
func mapReservationErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == reservationSeatConstraint {
		return domain.WrapError(domain.KindSeatAlreadyOccupied, err, "unique seat index")
	}

	return err
}
