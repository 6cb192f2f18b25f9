package domain

import "context"

type Movie struct {
	ID       int
	Title    string
	Genre    string
	Duration string
	Rating   float64
}

type MovieRepository interface {
	// FetchMovieDuration returns the raw "H.MM" duration of the movie.
	FetchMovieDuration(ctx context.Context, movieID int) (string, error)
	SaveMovieRating(ctx context.Context, movieID int, rating float64) error
}
