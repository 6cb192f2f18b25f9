package lock

import (
	"context"
	"fmt"

	"github.com/metinatakli/cinema-operations/internal/domain"
)

// GuardedTransactor takes a Locker key before delegating to the wrapped
// Transactor. With a RedisLocker in front of the Postgres transactor,
// contended requests queue in Redis instead of holding pooled connections
// inside open transactions while they wait for the row lock.
type GuardedTransactor struct {
	inner  domain.Transactor
	locker Locker
}

func NewGuardedTransactor(inner domain.Transactor, locker Locker) *GuardedTransactor {
	return &GuardedTransactor{
		inner:  inner,
		locker: locker,
	}
}

func ShowingKey(id int) string { return fmt.Sprintf("showing:%d", id) }
func HallKey(id int) string    { return fmt.Sprintf("hall:%d", id) }
func MovieKey(id int) string   { return fmt.Sprintf("movie:%d", id) }

func (g *GuardedTransactor) WithinShowing(ctx context.Context, showingID int, fn func(ctx context.Context) error) error {
	return g.guard(ctx, ShowingKey(showingID), func() error {
		return g.inner.WithinShowing(ctx, showingID, fn)
	})
}

func (g *GuardedTransactor) WithinHall(ctx context.Context, hallID int, fn func(ctx context.Context) error) error {
	return g.guard(ctx, HallKey(hallID), func() error {
		return g.inner.WithinHall(ctx, hallID, fn)
	})
}

func (g *GuardedTransactor) WithinMovie(ctx context.Context, movieID int, fn func(ctx context.Context) error) error {
	return g.guard(ctx, MovieKey(movieID), func() error {
		return g.inner.WithinMovie(ctx, movieID, fn)
	})
}

func (g *GuardedTransactor) guard(ctx context.Context, key string, fn func() error) error {
	release, err := g.locker.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}
