package store

import (
	"context"
	"errors"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface for durable credential records.
// Concrete drivers (sqlite today) implement it. It is always injected, never
// a package singleton, so tests can substitute fakes with their own clocks.
type Store interface {
	RefreshTokens() RefreshTokens
	APIKeys() APIKeys

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked on the record with this fingerprint.
	// Unknown fingerprints are not an error (RFC 7009 posture).
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type APIKeys interface {
	// CreateAPIKey inserts a new key record (id is provided by the caller).
	CreateAPIKey(ctx context.Context, k domain.APIKey) error

	// GetAPIKeyByHash fetches a key by the fingerprint of its plaintext.
	GetAPIKeyByHash(ctx context.Context, hash string) (domain.APIKey, error)

	// ListAPIKeysByUser returns a user's keys, newest first. Records carry
	// only digests; the plaintext was never stored.
	ListAPIKeysByUser(ctx context.Context, userID string) ([]domain.APIKey, error)

	// CountAPIKeysByUser counts all of a user's keys, active or revoked.
	CountAPIKeysByUser(ctx context.Context, userID string) (int, error)

	// SetAPIKeyActive toggles is_active, scoped to the owning user.
	// Returns false when no matching row was affected.
	SetAPIKeyActive(ctx context.Context, id, userID string, active bool) (bool, error)

	// TouchAPIKeyLastUsed stamps last_used_at. Called as a fire-and-forget
	// side effect of validation; failures must not affect the auth decision.
	TouchAPIKeyLastUsed(ctx context.Context, id string, at time.Time) error

	// DeleteAPIKey hard-deletes, scoped to the owning user. Returns false
	// when no matching row was affected.
	DeleteAPIKey(ctx context.Context, id, userID string) (bool, error)
}
