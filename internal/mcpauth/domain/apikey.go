package domain

import "time"

// APIKey is the durable record of a long-lived credential. The plaintext key
// is generated once, returned once, and never stored; only KeyHash persists.
type APIKey struct {
	ID         string
	UserID     string
	Name       string
	KeyHash    string // SHA-256 fingerprint of the plaintext key
	Prefix     string // leading fragment safe to show in listings
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
}

// Expired reports whether the key has a hard expiry in the past. Expiry does
// not flip IsActive; validation rejects the key regardless.
func (k APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// CreatedAPIKey is the one-time creation result carrying the plaintext key.
type CreatedAPIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"` // plaintext, shown exactly once
	Prefix    string     `json:"prefix"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
