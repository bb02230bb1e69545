package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/cryptox"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})

	t.Run("returns client metadata with 201", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodPost, "/mcp/oauth/register", "",
			`{"client_name":"example agent","redirect_uris":["https://app.example/cb"]}`)
		require.Equal(t, nethttp.StatusCreated, rec.Code)

		var reg domain.ClientRegistration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
		require.True(t, strings.HasPrefix(reg.ClientID, "mcp_"))
		require.Equal(t, "none", reg.TokenEndpointAuthMethod)
		require.Equal(t, []string{"https://app.example/cb"}, reg.RedirectURIs)
	})

	t.Run("echoes supplied grant_types", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodPost, "/mcp/oauth/register", "",
			`{"client_name":"cli","grant_types":["authorization_code"]}`)
		require.Equal(t, nethttp.StatusCreated, rec.Code)

		var reg domain.ClientRegistration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
		require.Equal(t, []string{"authorization_code"}, reg.GrantTypes)
	})

	t.Run("absent metadata gets defaults, not null", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodPost, "/mcp/oauth/register", "",
			`{"client_name":"cli"}`)
		require.Equal(t, nethttp.StatusCreated, rec.Code)

		var reg domain.ClientRegistration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
		require.Equal(t, []string{"authorization_code", "refresh_token"}, reg.GrantTypes)
		require.Equal(t, []string{domain.RedirectURIOutOfBand}, reg.RedirectURIs)
		require.NotContains(t, rec.Body.String(), `"redirect_uris":null`)
	})

	t.Run("missing client_name is invalid_client_metadata", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodPost, "/mcp/oauth/register", "", `{}`)
		require.Equal(t, nethttp.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), `"invalid_client_metadata"`)
	})
}

func TestIntrospectEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})

	t.Run("active token", func(t *testing.T) {
		token := signedAccessToken(t, env, "user-1")
		rec := postForm(t, env.router, "/mcp/oauth/introspect", url.Values{"token": {token}})
		require.Equal(t, nethttp.StatusOK, rec.Code)

		var info service.Introspection
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		require.True(t, info.Active)
		require.Equal(t, "user-1", info.Subject)
		require.Equal(t, "Bearer", info.TokenType)
		require.Equal(t, "mcp_abc", info.ClientID)
	})

	t.Run("invalid token is just inactive", func(t *testing.T) {
		rec := postForm(t, env.router, "/mcp/oauth/introspect", url.Values{"token": {"garbage"}})
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.JSONEq(t, `{"active":false}`, rec.Body.String())
	})

	t.Run("unknown hint is inactive", func(t *testing.T) {
		token := signedAccessToken(t, env, "user-1")
		rec := postForm(t, env.router, "/mcp/oauth/introspect", url.Values{
			"token":           {token},
			"token_type_hint": {"refresh_token"},
		})
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.JSONEq(t, `{"active":false}`, rec.Body.String())
	})
}

func TestRevokeEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})
	ctx := context.Background()

	code := "revoke-code"
	require.NoError(t, env.codes.Put(ctx, code, domain.PendingAuthorization{
		UserID:              "user-1",
		ClientID:            "mcp_abc",
		RedirectURI:         "https://app.example/callback",
		Scope:               "read",
		CodeChallenge:       cryptox.ChallengeFromVerifier("verifier123"),
		CodeChallengeMethod: cryptox.PKCEMethodS256,
		CreatedAt:           time.Now(),
	}, 10*time.Minute))

	pair, err := env.router.TokenService.ExchangeAuthorizationCode(ctx, code, "verifier123", "", "")
	require.NoError(t, err)

	t.Run("revokes a live refresh token", func(t *testing.T) {
		rec := postForm(t, env.router, "/mcp/oauth/revoke", url.Values{"token": {pair.RefreshToken}})
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.JSONEq(t, `{}`, rec.Body.String())

		_, err := env.router.TokenService.ExchangeRefreshToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidGrant)
	})

	t.Run("unknown tokens still return 200", func(t *testing.T) {
		rec := postForm(t, env.router, "/mcp/oauth/revoke", url.Values{"token": {"never-issued"}})
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.JSONEq(t, `{}`, rec.Body.String())
	})
}

func TestMetadataEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})

	t.Run("well-known document", func(t *testing.T) {
		req := httptest.NewRequest(nethttp.MethodGet, "/.well-known/oauth-authorization-server", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, nethttp.StatusOK, rec.Code)

		var meta service.AuthorizationServerMetadata
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
		require.Equal(t, "https://auth.test", meta.Issuer)
		require.Equal(t, "https://auth.test/mcp/oauth/token", meta.TokenEndpoint)
	})

	t.Run("service discovery document", func(t *testing.T) {
		req := httptest.NewRequest(nethttp.MethodGet, "/mcp/oauth/metadata", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, nethttp.StatusOK, rec.Code)

		var meta service.ServiceMetadata
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
		require.Equal(t, "https://auth.test/.well-known/oauth-authorization-server", meta.MetadataEndpoint)
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})

	t.Run("livez", func(t *testing.T) {
		req := httptest.NewRequest(nethttp.MethodGet, "/livez", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"ok"`)
	})

	t.Run("readyz", func(t *testing.T) {
		req := httptest.NewRequest(nethttp.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, nethttp.StatusOK, rec.Code)
	})
}
