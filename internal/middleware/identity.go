package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/song-sponsorship/internal/auth"
)

// Context keys set by RequireAdmin.
const (
	ctxPrincipal = "principal"
	ctxUserID    = "user_id"
	ctxRole      = "role"
)

// Principal returns the authenticated principal stored by RequireAdmin.
func Principal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(auth.Principal)
	return p, ok
}

// principalSubject identifies the caller for rate-limit keys.  It returns
// "guest" for unauthenticated requests.
func principalSubject(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "guest"
}
