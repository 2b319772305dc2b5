package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/song-sponsorship/internal/auth"
)

// RequireAdmin returns an Echo middleware that asks provider to verify
// the request.  On success the principal, its subject ("user_id") and its
// role ("role") are stored in the context for downstream handlers and
// middleware; otherwise the request is answered with 401.
func RequireAdmin(provider auth.Provider) echo.MiddlewareFunc {
	if provider == nil {
		panic("nil auth provider passed to RequireAdmin")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := provider.Verify(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Nicht autorisiert. Bitte einloggen."})
			}
			c.Set(ctxPrincipal, p)
			c.Set(ctxUserID, p.Subject)
			c.Set(ctxRole, p.Role)
			return next(c)
		}
	}
}
