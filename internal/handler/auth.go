package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/song-sponsorship/internal/auth"
	"github.com/iliyamo/song-sponsorship/internal/middleware"
)

// AuthHandler bundles dependencies for the admin session endpoints.
type AuthHandler struct {
	Sessions     *auth.SessionProvider
	Credential   *auth.PasswordCredential
	SecureCookie bool // set the Secure flag outside local environments
}

func NewAuthHandler(sessions *auth.SessionProvider, cred *auth.PasswordCredential, secureCookie bool) *AuthHandler {
	if sessions == nil || cred == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Sessions: sessions, Credential: cred, SecureCookie: secureCookie}
}

type loginReq struct {
	Password string `json:"password"`
}

type sessionResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login: check the shared password, set the session cookie and return the token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Password) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if !h.Credential.Check(req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	sess, err := h.Sessions.Issue()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	ck := h.cookie(sess.Token, sess.ExpiresAt)
	ck.MaxAge = int(h.Sessions.TTL() / time.Second) // cookie and token expire together
	c.SetCookie(ck)
	return c.JSON(http.StatusOK, sessionResp{Token: sess.Token, Expires: sess.ExpiresAt})
}

// Logout: expire the session cookie.  Bearer tokens simply run out.
func (h *AuthHandler) Logout(c echo.Context) error {
	ck := h.cookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	c.SetCookie(ck)
	return c.NoContent(http.StatusNoContent)
}

// Me: return the principal of the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Nicht autorisiert. Bitte einloggen."})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AuthHandler) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
