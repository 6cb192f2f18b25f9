package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) FetchMovieDuration(ctx context.Context, movieID int) (string, error) {
	var duration string

	err := conn(ctx, p.db).QueryRow(ctx, `SELECT duration FROM movies WHERE id = $1`, movieID).Scan(&duration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrRecordNotFound
		}

		return "", err
	}

	return duration, nil
}

func (p *PostgresMovieRepository) SaveMovieRating(ctx context.Context, movieID int, rating float64) error {
	tag, err := conn(ctx, p.db).Exec(ctx, `UPDATE movies SET rating = $1 WHERE id = $2`, rating, movieID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
