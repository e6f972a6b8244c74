// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	httputil "lodge/pkg/http"
	"lodge/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Stats        map[string]any    `json:"stats,omitempty"`
}

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Stats reports informational counters. They never affect readiness.
type Stats func() any

type HealthHandler struct {
	checks map[string]Check
	stats  map[string]Stats
	log    *logger.Logger
}

// NewHealthHandler probes MongoDB and, when configured, Redis.
func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	checks := map[string]Check{
		"database": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return NewHealthHandlerWithChecks(checks, log)
}

func NewHealthHandlerWithChecks(checks map[string]Check, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		stats:  make(map[string]Stats),
		log:    log,
	}
}

// WithStats adds a counters section, e.g. event publishing, to /ready.
func (h *HealthHandler) WithStats(name string, fn Stats) *HealthHandler {
	h.stats[name] = fn
	return h
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ready", Dependencies: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", name,
				"error", err,
				"path", r.URL.Path,
			)
			resp.Dependencies[name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[name] = "ok"
	}

	if len(h.stats) > 0 {
		resp.Stats = make(map[string]any, len(h.stats))
		for name, fn := range h.stats {
			resp.Stats[name] = fn()
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
