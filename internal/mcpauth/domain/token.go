package domain

import "time"

// TokenPair is what the token endpoint returns: a short-lived signed access
// token and, for the authorization_code grant, an opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	Scope        string
}

// RefreshToken models the stored refresh-token record. It is reusable until
// TTL expiry or explicit revocation; minting a new access token does not
// consume it.
type RefreshToken struct {
	ID        string
	UserID    string
	ClientID  string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	Scope     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
