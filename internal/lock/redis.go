package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("timed out waiting for lock")

// Deletes the lock only if it is still owned by the caller's token, so a
// lock that expired and was taken over is never released by the old owner.
var releaseLockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end

	return 0
`)

type RedisLockerConfig struct {
	// TTL bounds how long a crashed holder can block a key.
	TTL time.Duration
	// Wait bounds how long Lock polls before giving up.
	Wait         time.Duration
	PollInterval time.Duration
	Prefix       string
}

// RedisLocker is a Locker shared by every process using the same Redis.
type RedisLocker struct {
	client redis.UniversalClient
	cfg    RedisLockerConfig
	logger *slog.Logger
}

func NewRedisLocker(client redis.UniversalClient, cfg RedisLockerConfig, logger *slog.Logger) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 25 * time.Millisecond
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "lock:"
	}

	return &RedisLocker{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.cfg.Prefix + key
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Wait)
	defer cancel()

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.cfg.TTL).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		if ok {
			return l.releaseFunc(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaseFunc(redisKey, token string) func() {
	return func() {
		// The caller's context may already be cancelled once the unit of
		// work is over; the release has to reach Redis regardless.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		err := releaseLockScript.Run(ctx, l.client, []string{redisKey}, token).Err()
		if err != nil {
			l.logger.Error("failed to release lock", "key", redisKey, "error", err)
		}
	}
}
