package http

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acacialabs/acacia/pkg/cryptox"
)

func authorizeQuery(redirectURI string) url.Values {
	return url.Values{
		"response_type":         {"code"},
		"client_id":             {"mcp_abc"},
		"redirect_uri":          {redirectURI},
		"scope":                 {"read"},
		"state":                 {"state-123"},
		"code_challenge":        {cryptox.ChallengeFromVerifier("verifier123")},
		"code_challenge_method": {"S256"},
	}
}

func TestAuthorizeGet(t *testing.T) {
	t.Run("renders the consent screen for a valid request", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{userID: "user-1"})

		req := httptest.NewRequest(nethttp.MethodGet,
			"/mcp/oauth/authorize?"+authorizeQuery("https://app.example/callback").Encode(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		require.Contains(t, rec.Body.String(), "mcp_abc")
		require.Contains(t, rec.Body.String(), `value="approve"`)
	})

	t.Run("renders an error page for a malformed request", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{userID: "user-1"})

		q := authorizeQuery("https://app.example/callback")
		q.Del("code_challenge")

		req := httptest.NewRequest(nethttp.MethodGet, "/mcp/oauth/authorize?"+q.Encode(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		// A page, never a redirect: redirect_uri is unvalidated here.
		require.Equal(t, nethttp.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		require.Contains(t, rec.Body.String(), "Authorization error")
	})

	t.Run("redirects to login when no session exists", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{})

		req := httptest.NewRequest(nethttp.MethodGet,
			"/mcp/oauth/authorize?"+authorizeQuery("https://app.example/callback").Encode(), nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, nethttp.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(loc.String(), "https://auth.test/login"))

		// The original query rides along so login can re-enter the flow.
		returnTo := loc.Query().Get("return_to")
		require.Contains(t, returnTo, "/mcp/oauth/authorize")
		require.Contains(t, returnTo, "client_id=mcp_abc")
	})
}

func TestAuthorizePost(t *testing.T) {
	t.Run("approval redirects with code and state", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{userID: "user-1"})

		form := authorizeQuery("https://app.example/callback")
		form.Set("decision", "approve")

		rec := postForm(t, env.router, "/mcp/oauth/authorize", form)
		require.Equal(t, nethttp.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "app.example", loc.Host)
		require.Equal(t, "state-123", loc.Query().Get("state"))

		code := loc.Query().Get("code")
		require.NotEmpty(t, code)

		// The code is redeemable and bound to the approving user.
		record, found, err := env.codes.TakeOnce(context.Background(), code)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "user-1", record.UserID)
	})

	t.Run("denial redirects with access_denied", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{userID: "user-1"})

		form := authorizeQuery("https://app.example/callback")
		form.Set("decision", "deny")

		rec := postForm(t, env.router, "/mcp/oauth/authorize", form)
		require.Equal(t, nethttp.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "access_denied", loc.Query().Get("error"))
		require.Equal(t, "state-123", loc.Query().Get("state"))
		require.Empty(t, loc.Query().Get("code"))
	})

	t.Run("out-of-band clients get the code on a page", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{userID: "user-1"})

		form := authorizeQuery("urn:ietf:wg:oauth:2.0:oob")
		form.Set("decision", "approve")

		rec := postForm(t, env.router, "/mcp/oauth/authorize", form)
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		require.Contains(t, rec.Body.String(), "Authorization code")
	})

	t.Run("loopback clients get the code on a page", func(t *testing.T) {
		env := newTestEnv(t, &fakeSessions{userID: "user-1"})

		form := authorizeQuery("http://127.0.0.1:8912/callback")
		form.Set("decision", "approve")

		rec := postForm(t, env.router, "/mcp/oauth/authorize", form)
		require.Equal(t, nethttp.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Authorization code")
	})
}
