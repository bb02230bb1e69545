package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/store"
	"github.com/acacialabs/acacia/internal/mcpauth/store/codes"
	"github.com/acacialabs/acacia/pkg/cryptox"
	"github.com/acacialabs/acacia/pkg/idx"
	"github.com/acacialabs/acacia/pkg/jwtx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidGrant   = errors.New("invalid_grant")
	ErrNotConfigured  = errors.New("signing secret not configured")
)

// TokenService redeems authorization codes and refresh tokens for signed
// access tokens.
type TokenService struct {
	Codec      *jwtx.Codec
	Codes      codes.Store
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Ready reports whether the service can sign tokens. Handlers check this
// before parsing any input so a misconfigured server fails closed with
// server_error rather than leaking validation behaviour.
func (s *TokenService) Ready() bool {
	return s.Codec != nil && s.Codec.Ready()
}

// ExchangeAuthorizationCode implements the authorization_code grant.
//
// The code is taken from the ephemeral store in a single read-and-delete
// step, so a second redemption attempt fails identically to an unknown code.
// PKCE verification is what stops a stolen code being redeemed by an
// attacker who does not hold the original verifier.
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	code, codeVerifier, redirectURI, clientID string,
) (*domain.TokenPair, error) {
	if !s.Ready() {
		return nil, ErrNotConfigured
	}

	log := slogx.FromContext(ctx)
	now := s.now()

	code = strings.TrimSpace(code)
	codeVerifier = strings.TrimSpace(codeVerifier)
	if code == "" || codeVerifier == "" {
		return nil, ErrInvalidRequest
	}

	pending, found, err := s.Codes.TakeOnce(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidGrant
	}

	// Optional equality checks: if the caller repeats redirect_uri or
	// client_id, they must match what was captured at issuance.
	if redirectURI != "" && redirectURI != pending.RedirectURI {
		return nil, ErrInvalidGrant
	}
	if clientID != "" && clientID != pending.ClientID {
		return nil, ErrInvalidGrant
	}

	if !cryptox.VerifyChallenge(codeVerifier, pending.CodeChallenge, pending.CodeChallengeMethod) {
		log.Info("PKCE verification failed", "client_id", pending.ClientID)
		return nil, ErrInvalidGrant
	}

	accessToken, err := s.Codec.Sign(jwtx.NewAccessClaims(
		pending.UserID, pending.ClientID, pending.Scope, s.Issuer, s.AccessTTL, now,
	))
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize512)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    pending.UserID,
		ClientID:  pending.ClientID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		Scope:     pending.Scope,
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
		Scope:        pending.Scope,
	}, nil
}

// ExchangeRefreshToken implements the refresh_token grant. Refresh tokens
// are not single-use: the presented token stays valid until its own TTL
// lapses or it is revoked, so no rotation happens here.
func (s *TokenService) ExchangeRefreshToken(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	if !s.Ready() {
		return nil, ErrNotConfigured
	}

	now := s.now()

	if strings.TrimSpace(refreshOpaque) == "" {
		return nil, ErrInvalidRequest
	}

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(refreshOpaque))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidGrant
	}

	accessToken, err := s.Codec.Sign(jwtx.NewAccessClaims(
		rt.UserID, rt.ClientID, rt.Scope, s.Issuer, s.AccessTTL, now,
	))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   s.AccessTTL,
		Scope:       rt.Scope,
	}, nil
}

// RevokeRefreshToken revokes a refresh token by its opaque value. Unknown
// tokens are not an error so the revocation endpoint cannot be used to probe
// for live tokens.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, refreshOpaque string) error {
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque))
}

// Introspection is the RFC 7662 response body. Inactive tokens carry only
// the active flag.
type Introspection struct {
	Active    bool   `json:"active"`
	Subject   string `json:"sub,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// Introspect reports the status of an access token. Any verification failure
// collapses to {active: false}; malformed input is not an error here.
func (s *TokenService) Introspect(_ context.Context, raw string) Introspection {
	if !s.Ready() {
		return Introspection{}
	}

	claims, err := s.Codec.Verify(raw)
	if err != nil {
		return Introspection{}
	}

	return Introspection{
		Active:    true,
		Subject:   claims.Subject,
		TokenType: "Bearer",
		ClientID:  claims.ClientID,
		Scope:     claims.Scope,
	}
}
