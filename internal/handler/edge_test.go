package handler_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikrrevents/eventsite/internal/app"
	"github.com/ikrrevents/eventsite/internal/config"
)

func withRedis(t *testing.T, tune func(*app.Deps)) func(*app.Deps) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return func(d *app.Deps) {
		d.Redis = rdb
		tune(d)
	}
}

func TestPublicReadsCachedUntilWrite(t *testing.T) {
	env := newEnv(t, withRedis(t, func(d *app.Deps) {
		d.Cache = config.CacheConfig{
			Enabled:      true,
			Methods:      map[string]bool{"GET": true},
			TTL:          time.Minute,
			Prefix:       "test:cache",
			MaxBodyBytes: 1 << 20,
		}
	}))
	admin, _ := env.signIn(t, adminEmail, "Admin")

	const path = "/api/gallery/wedding-2025"
	rec := env.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = env.do(http.MethodGet, path, nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Empty(t, decode(t, rec)["images"])

	rec = upload(env, admin, "wedding-2025", "https://cdn.example.com/a.jpg")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, path, nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Len(t, decode(t, rec)["images"], 1)
	rec = env.do(http.MethodGet, path, nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Len(t, decode(t, rec)["images"], 1)

	rec = env.do(http.MethodGet, "/api/about", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Nil(t, decode(t, rec)["imageUrl"])
	rec = env.do(http.MethodGet, "/api/about", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = env.do(http.MethodPost, "/api/about", map[string]string{"imageUrl": "https://cdn.example.com/f.jpg"}, bearer(admin))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/about", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "https://cdn.example.com/f.jpg", decode(t, rec)["imageUrl"])

	// A query string bypasses the cache.
	rec = env.do(http.MethodGet, path+"?v=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestContactRateLimited(t *testing.T) {
	env := newEnv(t, withRedis(t, func(d *app.Deps) {
		d.RateLimit = config.RateLimitConfig{
			Enabled:        true,
			Capacity:       2,
			RefillTokens:   1,
			RefillInterval: time.Minute,
			TTL:            10 * time.Minute,
			KeyStrategy:    "ip_route",
			Prefix:         "test:rl",
		}
	}))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/contact", contactBody()).Code)
	}
	rec := env.do(http.MethodPost, "/api/contact", contactBody())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)

	// The blocked request never reached the handler.
	assert.Len(t, env.notifier.calls(), 2)
	var rows int
	require.NoError(t, env.db.Get(&rows, "SELECT COUNT(*) FROM simple_queries"))
	assert.Equal(t, 2, rows)
}

func TestUnknownAPIRoutes(t *testing.T) {
	env := newEnv(t)
	admin, _ := env.signIn(t, adminEmail, "Admin")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/nope", nil, bearer(admin)).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodPut, "/api/bookings", nil).Code)

	// Admin routes still demand a session.
	rec := env.do(http.MethodGet, "/api/bookings/all", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
