package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/metinatakli/cinema-operations/internal/mocks"
	"github.com/metinatakli/cinema-operations/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RatingAggregatorTestSuite struct {
	suite.Suite
	store      *repository.MemoryStore
	aggregator *RatingAggregator
	movieID    int
}

func (s *RatingAggregatorTestSuite) SetupTest() {
	s.store = repository.NewMemoryStore()
	s.aggregator = NewRatingAggregator(s.store, s.store, s.store, newTestLogger())
	s.movieID = s.store.PutMovie(domain.Movie{Title: "Alien", Duration: "1.57"})
}

func TestRatingAggregatorSuite(t *testing.T) {
	suite.Run(t, new(RatingAggregatorTestSuite))
}

func (s *RatingAggregatorTestSuite) storedRating() float64 {
	movie, ok := s.store.Movie(s.movieID)
	s.Require().True(ok)

	return movie.Rating
}

func (s *RatingAggregatorTestSuite) TestReviewLifecycle() {
	first := s.store.PutReview(s.movieID, 3)
	rating, err := s.aggregator.ReviewAdded(context.Background(), s.movieID)
	s.Require().NoError(err)
	s.Equal(3.0, rating)

	s.store.PutReview(s.movieID, 4)
	s.store.PutReview(s.movieID, 5)
	rating, err = s.aggregator.ReviewAdded(context.Background(), s.movieID)
	s.Require().NoError(err)
	s.Equal(4.0, rating)
	s.Equal(4.0, s.storedRating())

	s.Require().True(s.store.SetReviewRating(first, 4))
	rating, err = s.aggregator.ReviewChanged(context.Background(), first)
	s.Require().NoError(err)
	s.Equal(13.0/3, rating)
	s.Equal(13.0/3, s.storedRating())

	movieID, err := s.aggregator.MovieOfReview(context.Background(), first)
	s.Require().NoError(err)
	s.Require().True(s.store.RemoveReview(first))
	rating, err = s.aggregator.ReviewDeleted(context.Background(), movieID)
	s.Require().NoError(err)
	s.Equal(4.5, rating)
}

func (s *RatingAggregatorTestSuite) TestLastReviewDeletedResetsRating() {
	review := s.store.PutReview(s.movieID, 2)
	_, err := s.aggregator.ReviewAdded(context.Background(), s.movieID)
	s.Require().NoError(err)
	s.Equal(2.0, s.storedRating())

	s.Require().True(s.store.RemoveReview(review))
	rating, err := s.aggregator.ReviewDeleted(context.Background(), s.movieID)
	s.Require().NoError(err)
	s.Equal(domain.NoReviewsRating, rating)
	s.Equal(domain.NoReviewsRating, s.storedRating())
}

func (s *RatingAggregatorTestSuite) TestUnknownMovieOrReview() {
	_, err := s.aggregator.RecomputeMovieRating(context.Background(), 999)
	s.ErrorIs(err, domain.ErrMovieNotFound)

	_, err = s.aggregator.ReviewChanged(context.Background(), 999)
	s.ErrorIs(err, domain.ErrMovieNotFound)
}

func (s *RatingAggregatorTestSuite) TestConcurrentReviewsSettleOnTheMean() {
	ratings := []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1, 5, 5}

	var wg sync.WaitGroup
	for _, r := range ratings {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()

			s.store.PutReview(s.movieID, r)
			_, err := s.aggregator.ReviewAdded(context.Background(), s.movieID)
			s.NoError(err)
		}(r)
	}

	wg.Wait()

	s.Equal(domain.MeanRating(ratings), s.storedRating())
	s.Equal(40.0/12, s.storedRating())
}

func (s *RatingAggregatorTestSuite) TestNonTerminatingMeanIsStoredExactly() {
	for _, r := range []int{1, 1, 2} {
		s.store.PutReview(s.movieID, r)
	}

	rating, err := s.aggregator.RecomputeMovieRating(context.Background(), s.movieID)
	s.Require().NoError(err)
	s.Equal(4.0/3, rating)
	s.Equal(4.0/3, s.storedRating())
}

type RatingAggregatorMocksTestSuite struct {
	suite.Suite
	tx         *mocks.MockTransactor
	reviews    *mocks.MockReviewRepo
	movies     *mocks.MockMovieRepo
	aggregator *RatingAggregator
}

func (s *RatingAggregatorMocksTestSuite) SetupTest() {
	s.tx = new(mocks.MockTransactor)
	s.reviews = new(mocks.MockReviewRepo)
	s.movies = new(mocks.MockMovieRepo)
	s.aggregator = NewRatingAggregator(s.tx, s.reviews, s.movies, newTestLogger())
}

func TestRatingAggregatorMocksSuite(t *testing.T) {
	suite.Run(t, new(RatingAggregatorMocksTestSuite))
}

func (s *RatingAggregatorMocksTestSuite) TestRecomputeMovieRating() {
	dbErr := errors.New("database error")

	tests := []struct {
		name       string
		setupMocks func()
		want       float64
		wantErr    error
	}{
		{
			name: "mean is stored",
			setupMocks: func() {
				s.tx.On("WithinMovie", mock.Anything, 7).Return(nil)
				s.reviews.On("ListReviews", mock.Anything, 7).Return([]int{5, 4}, nil)
				s.movies.On("SaveMovieRating", mock.Anything, 7, 4.5).Return(nil)
			},
			want: 4.5,
		},
		{
			name: "listing reviews fails",
			setupMocks: func() {
				s.tx.On("WithinMovie", mock.Anything, 7).Return(nil)
				s.reviews.On("ListReviews", mock.Anything, 7).Return(nil, dbErr)
			},
			wantErr: domain.ErrRatingPersistFailed,
		},
		{
			name: "saving the rating fails",
			setupMocks: func() {
				s.tx.On("WithinMovie", mock.Anything, 7).Return(nil)
				s.reviews.On("ListReviews", mock.Anything, 7).Return([]int{}, nil)
				s.movies.On("SaveMovieRating", mock.Anything, 7, 0.0).Return(dbErr)
			},
			wantErr: domain.ErrRatingPersistFailed,
		},
		{
			name: "movie row is gone",
			setupMocks: func() {
				s.tx.On("WithinMovie", mock.Anything, 7).Return(nil)
				s.reviews.On("ListReviews", mock.Anything, 7).Return([]int{3}, nil)
				s.movies.On("SaveMovieRating", mock.Anything, 7, 3.0).Return(domain.ErrRecordNotFound)
			},
			wantErr: domain.ErrMovieNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			tt.setupMocks()

			rating, err := s.aggregator.RecomputeMovieRating(context.Background(), 7)

			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				s.Zero(rating)
			} else {
				s.Require().NoError(err)
				s.Equal(tt.want, rating)
			}

			s.tx.AssertExpectations(s.T())
			s.reviews.AssertExpectations(s.T())
			s.movies.AssertExpectations(s.T())
		})
	}
}
