package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SeatMapCache keeps the last committed seat map of each showing in Redis
// for the read-only seat map view. Booking never reads from it.
type SeatMapCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSeatMapCache(client redis.UniversalClient, ttl time.Duration) *SeatMapCache {
	return &SeatMapCache{
		client: client,
		ttl:    ttl,
	}
}

func seatMapKey(showingID int) string {
	return fmt.Sprintf("seat_map:%d", showingID)
}

// Get returns false on a cache miss.
func (c *SeatMapCache) Get(ctx context.Context, showingID int) (*domain.SeatMap, bool, error) {
	raw, err := c.client.Get(ctx, seatMapKey(showingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var seats domain.SeatMap

	err = json.Unmarshal(raw, &seats)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cached seat map: %w", err)
	}

	return &seats, true, nil
}

func (c *SeatMapCache) Set(ctx context.Context, showingID int, seats *domain.SeatMap) error {
	raw, err := json.Marshal(seats)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, seatMapKey(showingID), raw, c.ttl).Err()
}

func (c *SeatMapCache) Invalidate(ctx context.Context, showingID int) error {
	return c.client.Del(ctx, seatMapKey(showingID)).Err()
}
