package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/store"
	"github.com/acacialabs/acacia/pkg/cryptox"
	"github.com/acacialabs/acacia/pkg/idx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// MaxKeysPerUser caps how many API keys a single user may hold, counting
// revoked keys. The HTTP layer enforces the quota; the service only exposes
// the count so other surfaces can apply their own policy.
const MaxKeysPerUser = 10

var (
	ErrInvalidAPIKeyName = errors.New("invalid api key name")
	ErrAPIKeyNotFound    = errors.New("api key not found")
	ErrInvalidAPIKey     = errors.New("invalid api key")
)

// APIKeyService manages the long-lived credential scheme: minting keys,
// validating presented keys, and the revoke/reactivate/delete lifecycle.
type APIKeyService struct {
	Store store.Store

	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

func (s *APIKeyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create mints a new API key for the user. The plaintext is returned exactly
// once in the CreatedAPIKey; only its digest and a short display prefix are
// persisted.
func (s *APIKeyService) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (*domain.CreatedAPIKey, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidAPIKeyName
	}

	now := s.now()
	if expiresAt != nil && expiresAt.Before(now) {
		return nil, ErrInvalidAPIKeyName
	}

	plaintext, err := cryptox.GenerateAPIKey()
	if err != nil {
		log.Error("failed to generate api key", slog.Any("error", err))
		return nil, err
	}

	key := domain.APIKey{
		ID:        idx.New().String(),
		UserID:    userID,
		Name:      name,
		KeyHash:   cryptox.FingerprintToken(plaintext),
		Prefix:    cryptox.DisplayPrefix(plaintext),
		IsActive:  true,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := s.Store.APIKeys().CreateAPIKey(ctx, key); err != nil {
		return nil, err
	}

	return &domain.CreatedAPIKey{
		ID:        key.ID,
		Name:      key.Name,
		Key:       plaintext,
		Prefix:    key.Prefix,
		CreatedAt: key.CreatedAt,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

// Validate authenticates a presented API key. A key passes only when it
// exists, is active, and is not past its expiry. Every failure collapses to
// ErrInvalidAPIKey so the caller cannot distinguish unknown from revoked.
//
// On success the key's last_used_at is stamped in a background goroutine;
// the auth decision never waits on, or fails because of, that write.
func (s *APIKeyService) Validate(ctx context.Context, plaintext string) (*domain.Identity, error) {
	log := slogx.FromContext(ctx)

	if !cryptox.IsAPIKey(plaintext) {
		return nil, ErrInvalidAPIKey
	}

	key, err := s.Store.APIKeys().GetAPIKeyByHash(ctx, cryptox.FingerprintToken(plaintext))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}

	now := s.now()
	if !key.IsActive || key.Expired(now) {
		return nil, ErrInvalidAPIKey
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Store.APIKeys().TouchAPIKeyLastUsed(ctx, key.ID, now); err != nil {
			log.Warn("failed to stamp api key last_used_at",
				slog.String("key_id", key.ID),
				slog.Any("error", err),
			)
		}
	}()

	return &domain.Identity{
		UserID:   key.UserID,
		AuthType: domain.AuthAPIKey,
		Scope:    domain.DefaultScope,
	}, nil
}

// List returns the user's keys, newest first. Records never include the
// plaintext; it was shown once at creation and not retained.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]domain.APIKey, error) {
	return s.Store.APIKeys().ListAPIKeysByUser(ctx, userID)
}

// Count counts all of the user's keys, active or revoked, for quota checks.
func (s *APIKeyService) Count(ctx context.Context, userID string) (int, error) {
	return s.Store.APIKeys().CountAPIKeysByUser(ctx, userID)
}

// Revoke deactivates a key. Scoped to the owning user: revoking someone
// else's key reports not found.
func (s *APIKeyService) Revoke(ctx context.Context, id, userID string) error {
	return s.setActive(ctx, id, userID, false)
}

// Reactivate re-enables a revoked key. A key past its expiry stays unusable
// even when active.
func (s *APIKeyService) Reactivate(ctx context.Context, id, userID string) error {
	return s.setActive(ctx, id, userID, true)
}

func (s *APIKeyService) setActive(ctx context.Context, id, userID string, active bool) error {
	ok, err := s.Store.APIKeys().SetAPIKeyActive(ctx, id, userID, active)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAPIKeyNotFound
	}
	return nil
}

// Delete hard-deletes a key, scoped to the owning user.
func (s *APIKeyService) Delete(ctx context.Context, id, userID string) error {
	ok, err := s.Store.APIKeys().DeleteAPIKey(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAPIKeyNotFound
	}
	return nil
}
