// Package jwtx signs and verifies the service's HS256 access tokens.
package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret reports a codec constructed without signing material.
	ErrNoSecret = errors.New("jwtx: no signing secret configured")

	// ErrInvalidToken reports a token that failed verification for any
	// reason: bad signature, malformed structure, wrong algorithm or
	// expiry. Callers treat it as "unauthenticated", not as a fault.
	ErrInvalidToken = errors.New("jwtx: invalid token")
)

// Codec signs and verifies compact HS256 tokens with a shared secret.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec builds a codec. The secret may be empty; Sign and Verify then
// fail with ErrNoSecret, which the token endpoint maps to server_error.
func NewCodec(secret []byte, issuer string) *Codec {
	return &Codec{secret: secret, issuer: issuer}
}

// Ready reports whether the codec has signing material.
func (c *Codec) Ready() bool { return len(c.secret) > 0 }

// Sign produces a compact signed token for the claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	if !c.Ready() {
		return "", ErrNoSecret
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a compact token. Any failure (signature,
// structure, algorithm, iss mismatch or expiry) comes back as
// ErrInvalidToken so handlers cannot leak verification detail to callers.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if !c.Ready() {
		return nil, ErrNoSecret
	}

	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
