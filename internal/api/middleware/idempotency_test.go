package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return srv, client
}

// countingHandler plays the publish handler: it reports each status from
// the queue in turn and writes the matching body.
type countingHandler struct {
	calls    int
	statuses []int
	body     string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := http.StatusAccepted
	if h.calls < len(h.statuses) {
		status = h.statuses[h.calls]
	}
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(h.body))
}

func TestIdempotencyStoresAndReplaysResponse(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingHandler{body: `{"status": "published", "message_id": "11111111-1111-1111-1111-111111111111"}`}
	handler := Idempotency(client)(inner)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", nil)
	req.Header.Set("Idempotency-Key", "order-42")
	handler.ServeHTTP(first, req)

	require.Equal(t, http.StatusAccepted, first.Code)
	require.Equal(t, 1, inner.calls)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/publish", nil)
	req.Header.Set("Idempotency-Key", "order-42")
	handler.ServeHTTP(second, req)

	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.Contains(t, second.Body.String(), "request already processed")
	assert.Contains(t, second.Body.String(), "11111111-1111-1111-1111-111111111111")
	assert.Equal(t, 1, inner.calls)
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	srv, client := newTestRedis(t)
	inner := &countingHandler{body: `{"status": "published"}`}
	handler := Idempotency(client)(inner)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	}

	assert.Equal(t, 2, inner.calls)
	assert.Empty(t, srv.Keys())
}

func TestIdempotencyInFlightKeyConflicts(t *testing.T) {
	srv, client := newTestRedis(t)
	require.NoError(t, srv.Set("idempotency:publish:order-42", "PROCESSING"))

	inner := &countingHandler{body: `{"status": "published"}`}
	handler := Idempotency(client)(inner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", nil)
	req.Header.Set("Idempotency-Key", "order-42")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "concurrent request")
	assert.Equal(t, 0, inner.calls)
}

func TestIdempotencyFailedPublishReleasesLock(t *testing.T) {
	srv, client := newTestRedis(t)
	inner := &countingHandler{
		statuses: []int{http.StatusBadGateway, http.StatusAccepted},
		body:     `{"status": "published"}`,
	}
	handler := Idempotency(client)(inner)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", nil)
	req.Header.Set("Idempotency-Key", "order-42")
	handler.ServeHTTP(first, req)

	require.Equal(t, http.StatusBadGateway, first.Code)
	assert.False(t, srv.Exists("idempotency:publish:order-42"))

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/publish", nil)
	req.Header.Set("Idempotency-Key", "order-42")
	handler.ServeHTTP(second, req)

	assert.Equal(t, http.StatusAccepted, second.Code)
	assert.Equal(t, 2, inner.calls)
}

func TestIdempotencyRedisDownPassesThrough(t *testing.T) {
	// A listener that is already closed guarantees a refused connection.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	inner := &countingHandler{body: `{"status": "published"}`}
	handler := Idempotency(client)(inner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/publish", nil)
	req.Header.Set("Idempotency-Key", "order-42")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, inner.calls)
}
