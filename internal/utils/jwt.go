package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by ParseAccessToken for any token that is
// malformed, expired, or signed with a different key or algorithm.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT along with its id and expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	ID    string    // jti claim
	Exp   time.Time // the UTC expiration time
}

// Claims are the fields read back from a verified access token.
type Claims struct {
	Subject string
	Role    string
	ID      string
	Exp     time.Time
}

// NewAccessToken builds and signs an HS256 JWT.  The token carries the
// standard claims sub, exp, iat and jti (a random UUID) plus role.
func NewAccessToken(secret, subject, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"jti":  id,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: id, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns its claims.
// Only HMAC signatures are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{}
	out.Subject, _ = mc["sub"].(string)
	out.Role, _ = mc["role"].(string)
	out.ID, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.Exp = exp.Time
	}
	if out.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return out, nil
}
