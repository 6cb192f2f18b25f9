package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresShowingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowingRepository(db *pgxpool.Pool) *PostgresShowingRepository {
	return &PostgresShowingRepository{
		db: db,
	}
}

const showingColumns = `id, hall_id, movie_id, repertoire_id, show_date,
	to_char(start_time, 'HH24:MI'), language_ver, price::text`

func scanShowing(row pgx.Row) (*domain.Showing, error) {
	var (
		showing      domain.Showing
		repertoireID pgtype.Int4
		startTime    string
		language     string
		price        string
	)

	err := row.Scan(
		&showing.ID,
		&showing.HallID,
		&showing.MovieID,
		&repertoireID,
		&showing.Date,
		&startTime,
		&language,
		&price,
	)
	if err != nil {
		return nil, err
	}

	if repertoireID.Valid {
		showing.RepertoireID = int(repertoireID.Int32)
	}

	showing.Start, err = domain.ParseClockTime(startTime)
	if err != nil {
		return nil, fmt.Errorf("showing %d: %w", showing.ID, err)
	}

	showing.LanguageVersion = domain.LanguageVersion(language)

	showing.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("showing %d price: %w", showing.ID, err)
	}

	return &showing, nil
}

func (p *PostgresShowingRepository) GetShowing(ctx context.Context, id int) (*domain.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings WHERE id = $1`

	showing, err := scanShowing(conn(ctx, p.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return showing, nil
}

func (p *PostgresShowingRepository) ListShowings(ctx context.Context, hallID int, date time.Time) ([]domain.Showing, error) {
	query := `SELECT ` + showingColumns + `
		FROM showings
		WHERE hall_id = $1 AND show_date = $2
		ORDER BY start_time
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, hallID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showings := make([]domain.Showing, 0)

	for rows.Next() {
		showing, err := scanShowing(rows)
		if err != nil {
			return nil, err
		}

		showings = append(showings, *showing)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showings, nil
}

func (p *PostgresShowingRepository) ListHallShowingIDs(ctx context.Context, hallID int) ([]int, error) {
	rows, err := conn(ctx, p.db).Query(ctx, `SELECT id FROM showings WHERE hall_id = $1 ORDER BY id`, hallID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (p *PostgresShowingRepository) CreateShowing(ctx context.Context, showing *domain.Showing) error {
	query := `
		INSERT INTO showings (hall_id, movie_id, repertoire_id, show_date, start_time, language_ver, price)
		VALUES ($1, $2, $3, $4, $5::time, $6, $7::numeric)
		RETURNING id
	`

	return conn(ctx, p.db).QueryRow(
		ctx,
		query,
		showing.HallID,
		showing.MovieID,
		nullableID(showing.RepertoireID),
		showing.Date,
		showing.Start.String(),
		string(showing.LanguageVersion),
		showing.Price.String()).Scan(&showing.ID)
}

func (p *PostgresShowingRepository) UpdateShowing(ctx context.Context, showing *domain.Showing) error {
	query := `
		UPDATE showings
		SET hall_id = $1, movie_id = $2, repertoire_id = $3, show_date = $4,
			start_time = $5::time, language_ver = $6, price = $7::numeric
		WHERE id = $8
	`

	tag, err := conn(ctx, p.db).Exec(
		ctx,
		query,
		showing.HallID,
		showing.MovieID,
		nullableID(showing.RepertoireID),
		showing.Date,
		showing.Start.String(),
		string(showing.LanguageVersion),
		showing.Price.String(),
		showing.ID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresShowingRepository) LoadShowingSeatMap(ctx context.Context, showingID int) (*domain.SeatMap, error) {
	var seats []byte

	err := conn(ctx, p.db).QueryRow(ctx, `SELECT seats FROM showings WHERE id = $1`, showingID).Scan(&seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return decodeSeatMap(seats)
}

func (p *PostgresShowingRepository) SaveShowingSeatMap(ctx context.Context, showingID int, seats *domain.SeatMap) error {
	tag, err := conn(ctx, p.db).Exec(ctx, `UPDATE showings SET seats = $1 WHERE id = $2`, seats, showingID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func nullableID(id int) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(id), Valid: id > 0}
}
