package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/store/codes"
	"github.com/acacialabs/acacia/pkg/cryptox"
)

// DefaultCodeTTL is how long an issued authorization code stays redeemable.
const DefaultCodeTTL = 10 * time.Minute

// AuthorizeService validates authorization requests and issues single-use
// authorization codes into an ephemeral code store.
type AuthorizeService struct {
	Codes   codes.Store
	CodeTTL time.Duration

	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

// AuthorizeRequest captures the query parameters of an authorization request
// after form decoding but before validation.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeCodeResponse carries the issued code plus the redirect parameters
// the handler needs to build the callback URL.
type AuthorizeCodeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

func (s *AuthorizeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Validate checks the request parameters without touching any store. The
// handler calls it on GET so a malformed request fails before the user is
// ever shown a consent page.
//
// PKCE is mandatory: every client here is public, so a request without
// code_challenge is rejected outright.
func (s *AuthorizeService) Validate(req AuthorizeRequest) error {
	if req.ResponseType != "code" {
		return ErrInvalidRequest
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return ErrInvalidRequest
	}

	redirect := strings.TrimSpace(req.RedirectURI)
	if redirect == "" {
		return ErrInvalidRequest
	}
	u, err := url.Parse(redirect)
	if err != nil || !u.IsAbs() || u.Fragment != "" {
		return ErrInvalidRequest
	}

	if strings.TrimSpace(req.CodeChallenge) == "" {
		return ErrInvalidRequest
	}
	if !cryptox.ValidChallengeMethod(req.CodeChallengeMethod) {
		return ErrInvalidRequest
	}

	return nil
}

// Approve issues an authorization code bound to the authenticated user and
// the request's PKCE challenge. The plaintext code is the store key; only
// the ephemeral store ever sees it, and redemption deletes it.
func (s *AuthorizeService) Approve(ctx context.Context, userID string, req AuthorizeRequest) (*AuthorizeCodeResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidRequest
	}
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		scope = domain.DefaultScope
	}

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	record := domain.PendingAuthorization{
		UserID:              userID,
		ClientID:            strings.TrimSpace(req.ClientID),
		RedirectURI:         strings.TrimSpace(req.RedirectURI),
		Scope:               scope,
		CodeChallenge:       strings.TrimSpace(req.CodeChallenge),
		CodeChallengeMethod: cryptox.NormalizeChallengeMethod(req.CodeChallengeMethod),
		CreatedAt:           s.now(),
	}

	if err := s.Codes.Put(ctx, code, record, ttl); err != nil {
		return nil, err
	}

	return &AuthorizeCodeResponse{
		Code:        code,
		RedirectURI: record.RedirectURI,
		State:       req.State,
	}, nil
}
