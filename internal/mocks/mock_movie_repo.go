package mocks

import (
	"context"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockMovieRepo struct {
	mock.Mock
	domain.MovieRepository
}

func (m *MockMovieRepo) FetchMovieDuration(ctx context.Context, movieID int) (string, error) {
	args := m.Called(ctx, movieID)
	return args.String(0), args.Error(1)
}

func (m *MockMovieRepo) SaveMovieRating(ctx context.Context, movieID int, rating float64) error {
	args := m.Called(ctx, movieID, rating)
	return args.Error(0)
}
