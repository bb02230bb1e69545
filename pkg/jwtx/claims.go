package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTLs for the OAuth flows this service implements.
const (
	// DefaultAccessTokenTTL is the lifetime of a signed access token.
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL is the lifetime of an opaque refresh token.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Claims are the access-token claims. Tokens are self-contained: validity is
// determined solely by the signature and exp, there is no revocation list.
type Claims struct {
	jwt.RegisteredClaims

	// Scope is the space-delimited set of granted permission tags
	// ("read write admin").
	Scope string `json:"scope,omitempty"`

	// ClientID identifies the OAuth client the token was issued to.
	ClientID string `json:"client_id,omitempty"`
}

// NewAccessClaims builds minimally-correct claims with a fresh jti.
func NewAccessClaims(subject, clientID, scope, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope:    scope,
		ClientID: clientID,
	}
}

// ExpiresIn returns the number of seconds until exp, measured from now.
func (c *Claims) ExpiresIn(now time.Time) int {
	if c.ExpiresAt == nil {
		return 0
	}
	return int(c.ExpiresAt.Sub(now).Seconds())
}
