package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/auth"
	"github.com/iliyamo/song-sponsorship/internal/config"
	"github.com/iliyamo/song-sponsorship/internal/handler"
	"github.com/iliyamo/song-sponsorship/internal/middleware"
)

// Limits bundles the Redis backed cache and rate limit settings.  A nil
// Redis client turns both into pass-through middleware.
type Limits struct {
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Logger    zerolog.Logger
}

func (l Limits) cache() echo.MiddlewareFunc { return middleware.NewRedisCache(l.Cache, l.Redis) }
func (l Limits) purge() echo.MiddlewareFunc { return middleware.PurgeOnWrite(l.Cache, l.Redis, l.Logger) }
func (l Limits) limit() echo.MiddlewareFunc {
	return middleware.NewTokenBucket(l.RateLimit, l.Redis, l.Logger)
}

// RegisterRoutes registers the health checks and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db *gorm.DB, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterPublic registers the unauthenticated catalog and sponsorship
// endpoints.  The catalog listing is cached; a stored sponsorship purges
// the cache so the new applicant count shows up at once.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, l Limits) {
	e.GET("/songs", p.ListSongs, l.cache())
	e.POST("/sponsor", p.Sponsor, l.limit(), l.purge())
}

// RegisterAuth registers the admin session endpoints.  Login is rate
// limited; /admin/me requires a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, provider auth.Provider, l Limits) {
	e.POST("/admin/login", a.Login, l.limit())
	e.POST("/admin/logout", a.Logout)
	e.GET("/admin/me", a.Me, middleware.RequireAdmin(provider), middleware.RequireRole(auth.RoleAdmin))
}

// RegisterAdmin registers the catalog and sponsor management endpoints.
// All routes require an admin session; successful writes purge the
// response cache.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, provider auth.Provider, l Limits) {
	g := e.Group(
		"/admin",
		middleware.RequireAdmin(provider),
		middleware.RequireRole(auth.RoleAdmin),
		l.purge(),
	)

	// ---- Songs ----
	g.GET("/songs", h.ListSongs)
	g.POST("/songs", h.CreateSong)
	g.POST("/songs/bulk", h.BulkCreateSongs)
	g.POST("/songs/import", h.ImportSongs)
	g.GET("/songs/export", h.ExportSongs)
	g.PATCH("/songs/:id", h.UpdateSong)
	g.DELETE("/songs/:id", h.DeleteSong)

	// ---- Sponsors ----
	g.GET("/sponsors", h.ListSponsors)
	g.GET("/sponsors/export", h.ExportSponsors)
	g.DELETE("/sponsors/:id", h.DeleteSponsor)
}
