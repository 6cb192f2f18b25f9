package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/metinatakli/cinema-operations/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testShowDate = "2024-05-10"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestHall(t *testing.T, store *repository.MemoryStore, name string, rows, seats int) int {
	t.Helper()

	layout, err := domain.CreateLayout(rows, seats)
	require.NoError(t, err)

	hall := &domain.Hall{Name: name, RowCount: rows, SeatCount: seats, Seats: layout}
	require.NoError(t, store.CreateHall(context.Background(), hall))

	return hall.ID
}

func createTestShowing(t *testing.T, store *repository.MemoryStore, hallID, movieID int, start string) int {
	t.Helper()

	date, err := domain.ParseShowingDate(testShowDate)
	require.NoError(t, err)

	clock, err := domain.ParseClockTime(start)
	require.NoError(t, err)

	showing := &domain.Showing{
		HallID:          hallID,
		MovieID:         movieID,
		Date:            date,
		Start:           clock,
		LanguageVersion: domain.LanguageSubtitles,
		Price:           decimal.RequireFromString("25.00"),
	}
	require.NoError(t, store.CreateShowing(context.Background(), showing))

	return showing.ID
}

func seat(row string, n int) domain.SeatCoordinate {
	return domain.SeatCoordinate{Row: row, Seat: n}
}

// memorySeatMapCache is a SeatMapCache over a map.
type memorySeatMapCache struct {
	mu    sync.Mutex
	seats map[int]*domain.SeatMap
}

func newMemorySeatMapCache() *memorySeatMapCache {
	return &memorySeatMapCache{seats: make(map[int]*domain.SeatMap)}
}

func (c *memorySeatMapCache) Get(_ context.Context, showingID int) (*domain.SeatMap, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seats, ok := c.seats[showingID]
	if !ok {
		return nil, false, nil
	}

	return seats.Clone(), true, nil
}

func (c *memorySeatMapCache) Set(_ context.Context, showingID int, seats *domain.SeatMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seats[showingID] = seats.Clone()

	return nil
}

func (c *memorySeatMapCache) Invalidate(_ context.Context, showingID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.seats, showingID)

	return nil
}

func (c *memorySeatMapCache) has(showingID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.seats[showingID]

	return ok
}
