package middleware

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/song-sponsorship/internal/config"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      []string{"GET"},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestRedisCache_HitAfterMissAndPurgeOnWrite(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testCacheConfig()
	require.NoError(t, rdb.Set(context.Background(), "other:keep", "1", 0).Err())

	reads := 0
	e := echo.New()
	e.GET("/songs", func(c echo.Context) error {
		reads++
		return c.JSON(http.StatusOK, echo.Map{"reads": reads})
	}, NewRedisCache(cfg, rdb))
	e.POST("/sponsor", func(c echo.Context) error {
		if c.QueryParam("fail") != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone is required"})
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, PurgeOnWrite(cfg, rdb, zerolog.Nop()))

	rec := serve(e, http.MethodGet, "/songs")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"reads":1}`, rec.Body.String())
	contentType := rec.Header().Get(echo.HeaderContentType)

	rec = serve(e, http.MethodGet, "/songs")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"reads":1}`, rec.Body.String())
	assert.Equal(t, contentType, rec.Header().Get(echo.HeaderContentType))

	// a rejected write keeps the cache
	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodPost, "/sponsor?fail=1").Code)
	rec = serve(e, http.MethodGet, "/songs")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/sponsor").Code)
	rec = serve(e, http.MethodGet, "/songs")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"reads":2}`, rec.Body.String())
	assert.Equal(t, 2, reads)

	n, err := rdb.Exists(context.Background(), "other:keep").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "keys outside the prefix survive a purge")
}

func TestRedisCache_SkipsErrorsAndOversizedBodies(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testCacheConfig()
	cfg.MaxBodyBytes = 8

	calls := 0
	e := echo.New()
	e.GET("/big", func(c echo.Context) error { calls++; return c.String(http.StatusOK, "more than eight bytes") }, NewRedisCache(cfg, rdb))
	e.GET("/down", func(c echo.Context) error { calls++; return c.String(http.StatusInternalServerError, "x") }, NewRedisCache(cfg, rdb))

	for i := 0; i < 2; i++ {
		assert.Equal(t, "more than eight bytes", serve(e, http.MethodGet, "/big").Body.String())
		assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/down").Code)
	}
	assert.Equal(t, 4, calls)
}

func TestTokenBucket_LimitsPerRoute(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e := echo.New()
	e.POST("/sponsor", ok, NewTokenBucket(cfg, rdb, zerolog.Nop()))
	e.POST("/admin/login", ok, NewTokenBucket(cfg, rdb, zerolog.Nop()))

	rec := serve(e, http.MethodPost, "/sponsor")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodPost, "/sponsor")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodPost, "/sponsor")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 60)
	assert.Contains(t, rec.Body.String(), `"error":"rate limit exceeded"`)

	// separate bucket per route
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/admin/login").Code)
}

func TestTokenBucket_FailsOpenWhenRedisIsGone(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.POST("/sponsor", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb, zerolog.Nop()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/sponsor").Code)
	}
}
