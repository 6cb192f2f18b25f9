package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/app"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	Core        *app.Core
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Logger      *slog.Logger
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	core, err := app.NewPostgresCore(cfg, db, redisClient, logger)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:         app.NewApp(cfg, logger, db, redisClient, core),
		Core:        core,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	}, nil
}
