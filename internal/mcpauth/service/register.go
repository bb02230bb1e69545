package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/pkg/cryptox"
)

// ClientIDPrefix marks client identifiers minted by dynamic registration.
const ClientIDPrefix = "mcp_"

var ErrMissingClientName = errors.New("missing client name")

// RegisterService implements stateless dynamic client registration. Nothing
// is persisted: the issued client_id is an opaque handle the rest of the flow
// only ever compares for equality, so there is no registry to consult or
// clean up.
type RegisterService struct {
	// Now is injectable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

// RegisterRequest carries the client metadata the registration endpoint
// accepts. Everything except the name is optional.
type RegisterRequest struct {
	ClientName   string
	RedirectURIs []string
	GrantTypes   []string
}

// Register mints a fresh client registration. Clients are always public:
// token_endpoint_auth_method is "none" and PKCE carries the proof instead
// of a secret.
func (s *RegisterService) Register(_ context.Context, req RegisterRequest) (*domain.ClientRegistration, error) {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return nil, ErrMissingClientName
	}

	suffix, err := cryptox.GenerateToken(cryptox.TokenSize192)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	// Supplied metadata is echoed back verbatim; absent fields fall back to
	// the defaults a PKCE public client gets.
	redirectURIs := req.RedirectURIs
	if len(redirectURIs) == 0 {
		redirectURIs = []string{domain.RedirectURIOutOfBand}
	}
	grantTypes := req.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []string{"authorization_code", "refresh_token"}
	}

	return &domain.ClientRegistration{
		ClientID:                ClientIDPrefix + suffix,
		ClientName:              name,
		RedirectURIs:            redirectURIs,
		GrantTypes:              grantTypes,
		ResponseTypes:           []string{"code"},
		TokenEndpointAuthMethod: "none",
		ClientIDIssuedAt:        now.Unix(),
	}, nil
}
