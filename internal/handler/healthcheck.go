package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-operations/internal/vcs"
	"github.com/redis/go-redis/v9"
)

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status       string            `json:"status"`
	SystemInfo   SystemInfo        `json:"systemInfo"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type HealthcheckHandler struct {
	env   string
	db    *pgxpool.Pool
	redis redis.UniversalClient
}

// NewHealthcheckHandler reports on the given backends. A nil db or redis
// is left out of the response.
func NewHealthcheckHandler(env string, db *pgxpool.Pool, rdb redis.UniversalClient) *HealthcheckHandler {
	return &HealthcheckHandler{
		env:   env,
		db:    db,
		redis: rdb,
	}
}

func (h *HealthcheckHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthcheckResponse{
		Status: "UP",
		SystemInfo: SystemInfo{
			Version:     vcs.Version(),
			Environment: h.env,
		},
		Dependencies: map[string]string{},
	}

	if h.db != nil {
		resp.Dependencies["postgres"] = dependencyStatus(h.db.Ping(ctx))
	}

	if h.redis != nil {
		resp.Dependencies["redis"] = dependencyStatus(h.redis.Ping(ctx).Err())
	}

	status := http.StatusOK
	for _, state := range resp.Dependencies {
		if state != "UP" {
			resp.Status = "DOWN"
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func dependencyStatus(err error) string {
	if err != nil {
		return "DOWN"
	}

	return "UP"
}
