package http

import (
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

func doJSON(t *testing.T, env *testEnv, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})
	token := signedAccessToken(t, env, "user-1")

	var createdID, plaintext string

	t.Run("create returns the plaintext once", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodPost, "/api/keys", token, `{"name":"ci pipeline"}`)
		require.Equal(t, nethttp.StatusCreated, rec.Code)

		var created domain.CreatedAPIKey
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)
		require.True(t, strings.HasPrefix(created.Key, "aca_"))
		createdID, plaintext = created.ID, created.Key
	})

	t.Run("list shows the prefix but never the plaintext", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodGet, "/api/keys", token, "")
		require.Equal(t, nethttp.StatusOK, rec.Code)

		var keys []apiKeySummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
		require.Len(t, keys, 1)
		require.Equal(t, createdID, keys[0].ID)
		require.NotEmpty(t, keys[0].Prefix)
		require.NotContains(t, rec.Body.String(), plaintext)
	})

	t.Run("revoke and reactivate", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodPost, "/api/keys/"+createdID+"/revoke", token, "")
		require.Equal(t, nethttp.StatusNoContent, rec.Code)

		rec = doJSON(t, env, nethttp.MethodPost, "/api/keys/"+createdID+"/reactivate", token, "")
		require.Equal(t, nethttp.StatusNoContent, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodDelete, "/api/keys/"+createdID, token, "")
		require.Equal(t, nethttp.StatusNoContent, rec.Code)

		rec = doJSON(t, env, nethttp.MethodDelete, "/api/keys/"+createdID, token, "")
		require.Equal(t, nethttp.StatusNotFound, rec.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		rec := doJSON(t, env, nethttp.MethodGet, "/api/keys", "", "")
		require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	})
}

func TestAPIKeyQuota(t *testing.T) {
	env := newTestEnv(t, &fakeSessions{})
	token := signedAccessToken(t, env, "user-1")

	for i := 0; i < 10; i++ {
		rec := doJSON(t, env, nethttp.MethodPost, "/api/keys", token,
			fmt.Sprintf(`{"name":"key %d"}`, i))
		require.Equal(t, nethttp.StatusCreated, rec.Code)
	}

	rec := doJSON(t, env, nethttp.MethodPost, "/api/keys", token, `{"name":"one too many"}`)
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "limit")
}
