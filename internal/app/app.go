package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/handler"
	"github.com/metinatakli/cinema-operations/internal/middleware"
	"github.com/metinatakli/cinema-operations/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type Application struct {
	config Config
	logger *slog.Logger
	db     *pgxpool.Pool
	redis  redis.UniversalClient
	core   *Core
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	Lock             LockConfig
	OtelCollectorUrl string
	SeatMapCacheTTL  time.Duration
	BoundaryPolicy   string
	MigrationsPath   string
	Migrate          bool
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type LockConfig struct {
	TTL  time.Duration
	Wait time.Duration
}

func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&cfg.Port, "port", 3000, "healthcheck server port")
	fs.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL, empty disables distributed locks and the seat map cache")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	fs.DurationVar(&cfg.Lock.TTL, "lock-ttl", 10*time.Second, "Expiry of a distributed showing/hall/movie lock")
	fs.DurationVar(&cfg.Lock.Wait, "lock-wait", 5*time.Second, "How long to wait for a distributed lock")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector gRPC endpoint")
	fs.DurationVar(&cfg.SeatMapCacheTTL, "seatmap-cache-ttl", 30*time.Second, "Seat map cache entry lifetime")
	fs.StringVar(&cfg.BoundaryPolicy, "boundary-policy", "inclusive", "Showing overlap boundary (inclusive|half-open)")

	fs.StringVar(&cfg.MigrationsPath, "migrations", "file://migrations", "Migrations source URL")
	fs.BoolVar(&cfg.Migrate, "migrate", false, "Apply migrations before starting")
}

func Run() error {
	var cfg Config

	cfg.RegisterFlags(flag.CommandLine)

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	app := &Application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}

	telemetry, err := NewTelemetry(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			app.logger.Error("failed to shutdown telemetry providers", "error", err)
		}
	}()

	if telemetry.Enabled() {
		app.logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler(serviceName),
		))
	} else {
		app.logger.Info("OpenTelemetry collector URL not set, telemetry disabled")
	}

	if cfg.Migrate {
		err = RunMigrations(cfg.DB.DSN, cfg.MigrationsPath)
		if err != nil {
			return err
		}

		app.logger.Info("migrations applied", "source", cfg.MigrationsPath)
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	app.db = db

	if cfg.Redis.URL != "" {
		redisClient, err := NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		app.redis = redisClient
	}

	app.core, err = NewPostgresCore(cfg, db, app.redis, app.logger)
	if err != nil {
		return err
	}

	return app.run()
}

// NewApp assembles an Application from already opened backends. db and rdb
// may be nil; the healthcheck then leaves them out.
func NewApp(cfg Config, logger *slog.Logger, db *pgxpool.Pool, rdb redis.UniversalClient, core *Core) *Application {
	return &Application{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  rdb,
		core:   core,
	}
}

// Core returns the booking, scheduling and rating services.
func (app *Application) Core() *Core {
	return app.core
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RecoverPanic(app.logger))

	r.NotFound(middleware.NotFoundHandler)

	health := handler.NewHealthcheckHandler(app.config.Env, app.db, app.redis)
	r.Get("/v1/healthcheck", health.GetHealth)

	return r
}
