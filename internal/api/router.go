package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/zapan/eventbus/internal/api/middleware"
)

// NewRouter wires the gateway surface. The Redis client is optional; when
// present, POST requests carrying an Idempotency-Key header are
// deduplicated.
func NewRouter(h *Handlers, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)
	r.Use(ChiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	publish := r.With()
	if redisClient != nil {
		publish = r.With(middleware.Idempotency(redisClient))
	}
	publish.Post("/publish", h.PublishEvent)

	r.Get("/registry", h.GetRegistry)
	r.Get("/registry/{key}", h.GetRegistryKey)
	r.Post("/registry/regenerate", h.RegenerateRegistry)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
