package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// processingMarker locks an in-flight key so a concurrent duplicate
	// cannot publish the same event twice.
	processingMarker = "PROCESSING"
	lockTTL          = 10 * time.Second
	replayTTL        = 24 * time.Hour
)

// responseRecorder tees the handler's response so a successful publish
// can be replayed to later duplicates.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency deduplicates publish requests by their Idempotency-Key
// header. The first request with a key locks it, publishes, and stores
// the publish response (the message_id body) for a day; a duplicate gets
// 409 with the original response embedded so the caller can recover the
// message id. A failed publish releases the lock, so the client may
// retry with the same key. When Redis is unreachable the request passes
// through rather than block publishing.
func Idempotency(redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := fmt.Sprintf("idempotency:publish:%s", key)
			ctx := r.Context()

			val, err := redisClient.Get(ctx, idemKey).Result()
			switch {
			case err == nil && val != processingMarker:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.WriteHeader(http.StatusConflict)
				fmt.Fprintf(w, `{"error": "request already processed", "original_response": %s}`, val)
				return
			case err == nil:
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "concurrent request"}`))
				return
			case err != redis.Nil:
				// Redis unavailable: let the request through rather than block publishing
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := redisClient.SetNX(ctx, idemKey, processingMarker, lockTTL).Result()
			if err != nil || !acquired {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "concurrent request"}`))
				return
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				redisClient.Set(ctx, idemKey, rec.body.String(), replayTTL)
				return
			}
			// The publish failed; release the lock so the key stays usable.
			redisClient.Del(ctx, idemKey)
		})
	}
}
