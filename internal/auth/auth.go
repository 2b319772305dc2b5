// Package auth verifies the single administrator of the service.
//
// Handlers never look at cookies or headers themselves; they are guarded by
// middleware that asks a Provider whether the request carries a valid
// administrator session.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/song-sponsorship/internal/utils"
)

const (
	// CookieName is the session cookie set on login.
	CookieName = "admin_session"
	// RoleAdmin is the only role the service knows.
	RoleAdmin = "ADMIN"

	adminSubject = "admin"
)

// Principal identifies an authenticated caller.
type Principal struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Provider decides whether a request is authenticated.
type Provider interface {
	Verify(r *http.Request) (Principal, bool)
}

// Session is a freshly issued administrator session.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionProvider issues and verifies HS256 session tokens.  Tokens are
// read from an "Authorization: Bearer" header first and the session cookie
// second.
type SessionProvider struct {
	secret string
	ttl    time.Duration
}

// NewSessionProvider panics when secret is empty.
func NewSessionProvider(secret string, ttl time.Duration) *SessionProvider {
	if secret == "" {
		panic("empty session secret")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionProvider{secret: secret, ttl: ttl}
}

// TTL returns the lifetime of issued sessions.
func (p *SessionProvider) TTL() time.Duration { return p.ttl }

// Issue signs a new administrator session.
func (p *SessionProvider) Issue() (Session, error) {
	tok, err := utils.NewAccessToken(p.secret, adminSubject, RoleAdmin, p.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok.Token, ExpiresAt: tok.Exp}, nil
}

// Verify implements Provider.
func (p *SessionProvider) Verify(r *http.Request) (Principal, bool) {
	raw := tokenFrom(r)
	if raw == "" {
		return Principal{}, false
	}
	claims, err := utils.ParseAccessToken(p.secret, raw)
	if err != nil || claims.Role != RoleAdmin {
		return Principal{}, false
	}
	return Principal{
		Subject:   claims.Subject,
		Role:      claims.Role,
		SessionID: claims.ID,
		ExpiresAt: claims.Exp,
	}, true
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ErrNoCredential is returned when neither a password nor a hash is
// configured.
var ErrNoCredential = errors.New("auth: no admin credential configured")

// ErrMalformedHash is returned when the configured hash is not bcrypt.
var ErrMalformedHash = errors.New("auth: ADMIN_PASSWORD_HASH is not a bcrypt hash")

// PasswordCredential holds the bcrypt hash of the administrator password.
type PasswordCredential struct {
	hash string
}

// NewPasswordCredential prefers an existing bcrypt hash and otherwise
// hashes plain with the given cost.
func NewPasswordCredential(plain, hash string, cost int) (*PasswordCredential, error) {
	if hash != "" {
		if !utils.IsBcryptHash(hash) {
			return nil, ErrMalformedHash
		}
		return &PasswordCredential{hash: hash}, nil
	}
	if plain == "" {
		return nil, ErrNoCredential
	}
	h, err := utils.HashPassword(plain, cost)
	if err != nil {
		return nil, err
	}
	return &PasswordCredential{hash: h}, nil
}

// Check reports whether plain matches the configured password.
func (c *PasswordCredential) Check(plain string) bool {
	if plain == "" {
		return false
	}
	return utils.VerifyPassword(c.hash, plain)
}
