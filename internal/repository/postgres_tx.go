package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/domain"
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// conn returns the transaction bound to ctx by PostgresTransactor, or the pool.
func conn(ctx context.Context, db *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}

	return db
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

// PostgresTransactor opens one transaction per unit of work and takes a
// row-level lock (SELECT ... FOR UPDATE) on the showing, hall or movie row
// before running it. Every statement after the lock runs under READ
// COMMITTED and therefore sees what the previous lock holder committed.
type PostgresTransactor struct {
	db *pgxpool.Pool
}

func NewPostgresTransactor(db *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{
		db: db,
	}
}

func (p *PostgresTransactor) WithinShowing(ctx context.Context, showingID int, fn func(ctx context.Context) error) error {
	return p.within(ctx, `SELECT id FROM showings WHERE id = $1 FOR UPDATE`, showingID, domain.ErrShowingNotFound, fn)
}

func (p *PostgresTransactor) WithinHall(ctx context.Context, hallID int, fn func(ctx context.Context) error) error {
	return p.within(ctx, `SELECT id FROM halls WHERE id = $1 FOR UPDATE`, hallID, domain.ErrHallNotFound, fn)
}

func (p *PostgresTransactor) WithinMovie(ctx context.Context, movieID int, fn func(ctx context.Context) error) error {
	return p.within(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, movieID, domain.ErrMovieNotFound, fn)
}

func (p *PostgresTransactor) within(
	ctx context.Context,
	lockQuery string,
	id int,
	notFound error,
	fn func(ctx context.Context) error) error {

	lockRow := func(tx pgx.Tx) error {
		var lockedID int

		err := tx.QueryRow(ctx, lockQuery, id).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound
			}

			return err
		}

		return nil
	}

	// Nested units join the outer transaction.
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		if err := lockRow(tx); err != nil {
			return err
		}

		return fn(ctx)
	}

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		if err := lockRow(tx); err != nil {
			return err
		}

		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
