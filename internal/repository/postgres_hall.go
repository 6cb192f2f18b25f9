package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/domain"
)

var ErrHallNameTaken = errors.New("hall name already taken")

type PostgresHallRepository struct {
	db *pgxpool.Pool
}

func NewPostgresHallRepository(db *pgxpool.Pool) *PostgresHallRepository {
	return &PostgresHallRepository{
		db: db,
	}
}

func (p *PostgresHallRepository) CreateHall(ctx context.Context, hall *domain.Hall) error {
	query := `
		INSERT INTO halls (name, row_count, seat_count, seats)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := conn(ctx, p.db).QueryRow(ctx, query, hall.Name, hall.RowCount, hall.SeatCount, hall.Seats).Scan(&hall.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrHallNameTaken
		}

		return err
	}

	return nil
}

func (p *PostgresHallRepository) GetHall(ctx context.Context, id int) (*domain.Hall, error) {
	query := `
		SELECT id, name, row_count, seat_count, seats
		FROM halls
		WHERE id = $1
	`

	var hall domain.Hall
	var seats []byte

	err := conn(ctx, p.db).QueryRow(ctx, query, id).Scan(
		&hall.ID,
		&hall.Name,
		&hall.RowCount,
		&hall.SeatCount,
		&seats,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	hall.Seats, err = decodeSeatMap(seats)
	if err != nil {
		return nil, fmt.Errorf("hall %d: %w", id, err)
	}

	return &hall, nil
}

func (p *PostgresHallRepository) DeleteHall(ctx context.Context, id int) error {
	tag, err := conn(ctx, p.db).Exec(ctx, `DELETE FROM halls WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresHallRepository) LoadSeatMap(ctx context.Context, hallID int) (*domain.SeatMap, error) {
	var seats []byte

	err := conn(ctx, p.db).QueryRow(ctx, `SELECT seats FROM halls WHERE id = $1`, hallID).Scan(&seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return decodeSeatMap(seats)
}

func (p *PostgresHallRepository) SaveSeatMap(ctx context.Context, hallID int, seats *domain.SeatMap) error {
	tag, err := conn(ctx, p.db).Exec(ctx, `UPDATE halls SET seats = $1 WHERE id = $2`, seats, hallID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func decodeSeatMap(raw []byte) (*domain.SeatMap, error) {
	if raw == nil {
		return nil, domain.ErrRecordNotFound
	}

	var seats domain.SeatMap

	err := json.Unmarshal(raw, &seats)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seat map: %w", err)
	}

	return &seats, nil
}
