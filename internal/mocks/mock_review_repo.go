package mocks

import (
	"context"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReviewRepo struct {
	mock.Mock
	domain.ReviewRepository
}

func (m *MockReviewRepo) ListReviews(ctx context.Context, movieID int) ([]int, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockReviewRepo) MovieIDForReview(ctx context.Context, reviewID int) (int, error) {
	args := m.Called(ctx, reviewID)
	return args.Int(0), args.Error(1)
}
