package domain

import (
	"context"
)

const (
	MinReviewRating = 1
	MaxReviewRating = 5

	// NoReviewsRating is the rating of a movie nobody has reviewed.
	NoReviewsRating = 0.0
)

// MeanRating is the arithmetic mean of the ratings, or NoReviewsRating for
// an empty set.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return NoReviewsRating
	}

	sum := int64(0)
	for _, r := range ratings {
		sum += int64(r)
	}

	return float64(sum) / float64(len(ratings))
}

type ReviewRepository interface {
	ListReviews(ctx context.Context, movieID int) ([]int, error)
	MovieIDForReview(ctx context.Context, reviewID int) (int, error)
}
