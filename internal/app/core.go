package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/cache"
	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/metinatakli/cinema-operations/internal/lock"
	"github.com/metinatakli/cinema-operations/internal/repository"
	"github.com/metinatakli/cinema-operations/internal/service"
	"github.com/metinatakli/cinema-operations/internal/validator"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
)

// Core bundles the services that make up the cinema core.
type Core struct {
	Bookings *service.BookingService
	Showings *service.ShowingValidationService
	Ratings  *service.RatingAggregator
	Halls    *service.HallService
}

// Repositories are the storage ports the services are built on.
type Repositories struct {
	Halls        domain.HallRepository
	Showings     domain.ShowingRepository
	Reservations domain.ReservationRepository
	Movies       domain.MovieRepository
	Reviews      domain.ReviewRepository
}

type CoreOptions struct {
	BoundaryPolicy domain.BoundaryPolicy
	SeatMapCache   service.SeatMapCache
	MeterProvider  metric.MeterProvider
}

func NewCore(tx domain.Transactor, repos Repositories, logger *slog.Logger, opts CoreOptions) *Core {
	bookingOpts := []service.BookingOption{}
	showingOpts := []service.ShowingOption{service.WithBoundaryPolicy(opts.BoundaryPolicy)}
	ratingOpts := []service.RatingOption{}
	hallOpts := []service.HallOption{}

	if opts.SeatMapCache != nil {
		bookingOpts = append(bookingOpts, service.WithSeatMapCache(opts.SeatMapCache))
		hallOpts = append(hallOpts, service.WithHallSeatMapCache(opts.SeatMapCache))
	}

	if opts.MeterProvider != nil {
		bookingOpts = append(bookingOpts, service.WithBookingMeterProvider(opts.MeterProvider))
		showingOpts = append(showingOpts, service.WithShowingMeterProvider(opts.MeterProvider))
		ratingOpts = append(ratingOpts, service.WithRatingMeterProvider(opts.MeterProvider))
	}

	return &Core{
		Bookings: service.NewBookingService(tx, repos.Halls, repos.Showings, repos.Reservations, logger, bookingOpts...),
		Showings: service.NewShowingValidationService(
			tx, repos.Showings, repos.Movies, validator.NewValidator(), logger, showingOpts...),
		Ratings: service.NewRatingAggregator(tx, repos.Reviews, repos.Movies, logger, ratingOpts...),
		Halls:   service.NewHallService(tx, repos.Halls, repos.Showings, logger, hallOpts...),
	}
}

// NewPostgresCore builds the core on PostgreSQL. When a Redis client is
// given, locks are also taken in Redis and seat maps are cached there.
func NewPostgresCore(cfg Config, db *pgxpool.Pool, rdb redis.UniversalClient, logger *slog.Logger) (*Core, error) {
	policy, err := domain.ParseBoundaryPolicy(cfg.BoundaryPolicy)
	if err != nil {
		return nil, err
	}

	repos := Repositories{
		Halls:        repository.NewPostgresHallRepository(db),
		Showings:     repository.NewPostgresShowingRepository(db),
		Reservations: repository.NewPostgresReservationRepository(db),
		Movies:       repository.NewPostgresMovieRepository(db),
		Reviews:      repository.NewPostgresReviewRepository(db),
	}

	var tx domain.Transactor = repository.NewPostgresTransactor(db)
	opts := CoreOptions{BoundaryPolicy: policy}

	if rdb != nil {
		locker := lock.NewRedisLocker(rdb, lock.RedisLockerConfig{
			TTL:  cfg.Lock.TTL,
			Wait: cfg.Lock.Wait,
		}, logger)

		tx = lock.NewGuardedTransactor(tx, locker)
		opts.SeatMapCache = cache.NewSeatMapCache(rdb, cfg.SeatMapCacheTTL)
	}

	logger.Info("cinema core ready", "boundary_policy", policy.String(), "redis", rdb != nil)

	return NewCore(tx, repos, logger, opts), nil
}

// NewMemoryCore builds the core on a single-process store.
func NewMemoryCore(store *repository.MemoryStore, logger *slog.Logger, opts CoreOptions) *Core {
	repos := Repositories{
		Halls:        store,
		Showings:     store,
		Reservations: store,
		Movies:       store,
		Reviews:      store,
	}

	return NewCore(store, repos, logger, opts)
}
