package domain

import "context"

// Transactor runs fn as one atomic unit while holding the exclusive lock of
// a single showing, hall or movie. The context passed to fn must be used for
// every repository call that belongs to the unit. If fn returns an error no
// write made through that context survives.
type Transactor interface {
	WithinShowing(ctx context.Context, showingID int, fn func(ctx context.Context) error) error
	WithinHall(ctx context.Context, hallID int, fn func(ctx context.Context) error) error
	WithinMovie(ctx context.Context, movieID int, fn func(ctx context.Context) error) error
}
