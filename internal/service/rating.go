package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"go.opentelemetry.io/otel/metric"
)

// RatingAggregator keeps a movie's rating equal to the mean of its reviews.
// It must be called after every review write has committed; runs for the
// same movie are serialized so the last one always sees the final set.
type RatingAggregator struct {
	tx      domain.Transactor
	reviews domain.ReviewRepository
	movies  domain.MovieRepository
	logger  *slog.Logger
	metrics instruments
}

type RatingOption func(*RatingAggregator)

func WithRatingMeterProvider(provider metric.MeterProvider) RatingOption {
	return func(a *RatingAggregator) {
		a.metrics = newInstruments(provider)
	}
}

func NewRatingAggregator(
	tx domain.Transactor,
	reviews domain.ReviewRepository,
	movies domain.MovieRepository,
	logger *slog.Logger,
	opts ...RatingOption) *RatingAggregator {

	a := &RatingAggregator{
		tx:      tx,
		reviews: reviews,
		movies:  movies,
		logger:  logger,
		metrics: newInstruments(nil),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// RecomputeMovieRating recomputes and stores the movie's mean rating.
func (a *RatingAggregator) RecomputeMovieRating(ctx context.Context, movieID int) (float64, error) {
	var rating float64

	err := a.tx.WithinMovie(ctx, movieID, func(ctx context.Context) error {
		ratings, err := a.reviews.ListReviews(ctx, movieID)
		if err != nil {
			return domain.WrapError(domain.KindRatingPersistFailed, err, "listing reviews of movie %d", movieID)
		}

		rating = domain.MeanRating(ratings)

		err = a.movies.SaveMovieRating(ctx, movieID, rating)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return domain.WrapError(domain.KindMovieNotFound, err, "movie %d", movieID)
			}

			return domain.WrapError(domain.KindRatingPersistFailed, err, "saving rating of movie %d", movieID)
		}

		return nil
	})

	record(ctx, a.metrics.ratings, "recompute", err)

	if err != nil {
		a.logger.Error("movie rating recompute failed", "movie_id", movieID, "error", err)
		return 0, err
	}

	a.logger.Debug("movie rating recomputed", "movie_id", movieID, "rating", rating)

	return rating, nil
}

// ReviewAdded runs after a review for movieID was inserted.
func (a *RatingAggregator) ReviewAdded(ctx context.Context, movieID int) (float64, error) {
	return a.RecomputeMovieRating(ctx, movieID)
}

// ReviewChanged runs after a review was updated. The movie is taken from
// the stored review, never from the update payload.
func (a *RatingAggregator) ReviewChanged(ctx context.Context, reviewID int) (float64, error) {
	movieID, err := a.MovieOfReview(ctx, reviewID)
	if err != nil {
		return 0, err
	}

	return a.RecomputeMovieRating(ctx, movieID)
}

// ReviewDeleted runs after a review was deleted. The caller resolves the
// movie with MovieOfReview before deleting.
func (a *RatingAggregator) ReviewDeleted(ctx context.Context, movieID int) (float64, error) {
	return a.RecomputeMovieRating(ctx, movieID)
}

func (a *RatingAggregator) MovieOfReview(ctx context.Context, reviewID int) (int, error) {
	movieID, err := a.reviews.MovieIDForReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return 0, domain.WrapError(domain.KindMovieNotFound, err, "no movie for review %d", reviewID)
		}

		return 0, err
	}

	return movieID, nil
}
