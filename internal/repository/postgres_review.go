package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/domain"
)

type PostgresReviewRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{
		db: db,
	}
}

func (p *PostgresReviewRepository) ListReviews(ctx context.Context, movieID int) ([]int, error) {
	rows, err := conn(ctx, p.db).Query(ctx, `SELECT rating FROM reviews WHERE movie_id = $1`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]int, 0)

	for rows.Next() {
		var rating int

		err = rows.Scan(&rating)
		if err != nil {
			return nil, err
		}

		ratings = append(ratings, rating)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}

func (p *PostgresReviewRepository) MovieIDForReview(ctx context.Context, reviewID int) (int, error) {
	var movieID int

	err := conn(ctx, p.db).QueryRow(ctx, `SELECT movie_id FROM reviews WHERE id = $1`, reviewID).Scan(&movieID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRecordNotFound
		}

		return 0, err
	}

	return movieID, nil
}
