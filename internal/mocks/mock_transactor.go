package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTransactor records the lock that was asked for and runs fn inline
// unless the expectation returns an error.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinShowing(ctx context.Context, showingID int, fn func(ctx context.Context) error) error {
	return m.run(ctx, "WithinShowing", showingID, fn)
}

func (m *MockTransactor) WithinHall(ctx context.Context, hallID int, fn func(ctx context.Context) error) error {
	return m.run(ctx, "WithinHall", hallID, fn)
}

func (m *MockTransactor) WithinMovie(ctx context.Context, movieID int, fn func(ctx context.Context) error) error {
	return m.run(ctx, "WithinMovie", movieID, fn)
}

func (m *MockTransactor) run(ctx context.Context, method string, id int, fn func(ctx context.Context) error) error {
	args := m.MethodCalled(method, ctx, id)
	if err := args.Error(0); err != nil {
		return err
	}

	return fn(ctx)
}
