package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/store/codes"
	"github.com/acacialabs/acacia/internal/mcpauth/store/drivers/sqlite"
	"github.com/acacialabs/acacia/pkg/cryptox"
	"github.com/acacialabs/acacia/pkg/idx"
	"github.com/acacialabs/acacia/pkg/jwtx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTokenService(t *testing.T, codeStore codes.Store) *TokenService {
	t.Helper()

	return &TokenService{
		Codec:      jwtx.NewCodec([]byte("test-secret"), "https://auth.test"),
		Codes:      codeStore,
		Store:      newTestStore(t),
		Issuer:     "https://auth.test",
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

func seedCode(t *testing.T, codeStore codes.Store, verifier string) string {
	t.Helper()

	code := "test-authorization-code-" + idx.New().String()
	record := domain.PendingAuthorization{
		UserID:              "user-1",
		ClientID:            "mcp_client",
		RedirectURI:         "https://app.example/callback",
		Scope:               "read write",
		CodeChallenge:       cryptox.ChallengeFromVerifier(verifier),
		CodeChallengeMethod: cryptox.PKCEMethodS256,
		CreatedAt:           time.Now(),
	}
	require.NoError(t, codeStore.Put(context.Background(), code, record, 10*time.Minute))
	return code
}

func TestExchangeAuthorizationCodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	codeStore := codes.NewMemoryStore(nil)
	svc := newTokenService(t, codeStore)

	verifier := "round-trip-verifier"
	code := seedCode(t, codeStore, verifier)

	pair, err := svc.ExchangeAuthorizationCode(ctx, code, verifier, "https://app.example/callback", "mcp_client")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, time.Hour, pair.ExpiresIn)
	require.Equal(t, "read write", pair.Scope)

	claims, err := svc.Codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "mcp_client", claims.ClientID)
	require.Equal(t, "read write", claims.Scope)
}

func TestExchangeAuthorizationCodeSingleUse(t *testing.T) {
	ctx := context.Background()
	codeStore := codes.NewMemoryStore(nil)
	svc := newTokenService(t, codeStore)

	verifier := "single-use-verifier"
	code := seedCode(t, codeStore, verifier)

	_, err := svc.ExchangeAuthorizationCode(ctx, code, verifier, "", "")
	require.NoError(t, err)

	// Second redemption with the correct verifier still fails: the code was
	// consumed by the first call.
	_, err = svc.ExchangeAuthorizationCode(ctx, code, verifier, "", "")
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchangeAuthorizationCodeWrongVerifier(t *testing.T) {
	ctx := context.Background()
	codeStore := codes.NewMemoryStore(nil)
	svc := newTokenService(t, codeStore)

	code := seedCode(t, codeStore, "correct-verifier")

	_, err := svc.ExchangeAuthorizationCode(ctx, code, "wrong-verifier", "", "")
	require.ErrorIs(t, err, ErrInvalidGrant)

	// Failed PKCE verification still consumed the code.
	_, err = svc.ExchangeAuthorizationCode(ctx, code, "correct-verifier", "", "")
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchangeAuthorizationCodeBindingChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("redirect uri mismatch", func(t *testing.T) {
		codeStore := codes.NewMemoryStore(nil)
		svc := newTokenService(t, codeStore)
		code := seedCode(t, codeStore, "verifier")

		_, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "https://evil.example/cb", "")
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("client id mismatch", func(t *testing.T) {
		codeStore := codes.NewMemoryStore(nil)
		svc := newTokenService(t, codeStore)
		code := seedCode(t, codeStore, "verifier")

		_, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "", "mcp_other")
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("omitted parameters are not checked", func(t *testing.T) {
		codeStore := codes.NewMemoryStore(nil)
		svc := newTokenService(t, codeStore)
		code := seedCode(t, codeStore, "verifier")

		_, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "", "")
		require.NoError(t, err)
	})
}

func TestExchangeAuthorizationCodeExpired(t *testing.T) {
	ctx := context.Background()

	now := time.Now()
	clock := now
	codeStore := codes.NewMemoryStore(func() time.Time { return clock })
	svc := newTokenService(t, codeStore)

	code := seedCode(t, codeStore, "verifier")

	clock = now.Add(11 * time.Minute)

	_, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "", "")
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchangeAuthorizationCodeMissingInput(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t, codes.NewMemoryStore(nil))

	_, err := svc.ExchangeAuthorizationCode(ctx, "", "verifier", "", "")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.ExchangeAuthorizationCode(ctx, "some-code", "", "", "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestExchangeRefreshToken(t *testing.T) {
	ctx := context.Background()
	codeStore := codes.NewMemoryStore(nil)
	svc := newTokenService(t, codeStore)

	code := seedCode(t, codeStore, "verifier")
	pair, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "", "")
	require.NoError(t, err)

	t.Run("mints a new access token", func(t *testing.T) {
		refreshed, err := svc.ExchangeRefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, refreshed.AccessToken)
		require.Equal(t, "read write", refreshed.Scope)

		claims, err := svc.Codec.Verify(refreshed.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
	})

	t.Run("does not rotate the refresh token", func(t *testing.T) {
		refreshed, err := svc.ExchangeRefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Empty(t, refreshed.RefreshToken)

		// The original token is still redeemable.
		_, err = svc.ExchangeRefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		_, err := svc.ExchangeRefreshToken(ctx, "not-a-real-refresh-token")
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("rejects revoked tokens", func(t *testing.T) {
		require.NoError(t, svc.RevokeRefreshToken(ctx, pair.RefreshToken))

		_, err := svc.ExchangeRefreshToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidGrant)
	})
}

func TestExchangeRefreshTokenExpired(t *testing.T) {
	ctx := context.Background()
	codeStore := codes.NewMemoryStore(nil)
	svc := newTokenService(t, codeStore)

	now := time.Now()
	svc.Now = func() time.Time { return now }

	code := seedCode(t, codeStore, "verifier")
	pair, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "", "")
	require.NoError(t, err)

	// Jump past the 30-day refresh TTL.
	now = now.Add(31 * 24 * time.Hour)

	_, err = svc.ExchangeRefreshToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestTokenServiceNotConfigured(t *testing.T) {
	ctx := context.Background()
	svc := &TokenService{Codec: jwtx.NewCodec(nil, "")}

	_, err := svc.ExchangeAuthorizationCode(ctx, "code", "verifier", "", "")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = svc.ExchangeRefreshToken(ctx, "token")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestIntrospect(t *testing.T) {
	ctx := context.Background()
	codeStore := codes.NewMemoryStore(nil)
	svc := newTokenService(t, codeStore)

	code := seedCode(t, codeStore, "verifier")
	pair, err := svc.ExchangeAuthorizationCode(ctx, code, "verifier", "", "")
	require.NoError(t, err)

	t.Run("active token", func(t *testing.T) {
		info := svc.Introspect(ctx, pair.AccessToken)
		require.True(t, info.Active)
		require.Equal(t, "user-1", info.Subject)
		require.Equal(t, "Bearer", info.TokenType)
		require.Equal(t, "mcp_client", info.ClientID)
	})

	t.Run("garbage token", func(t *testing.T) {
		info := svc.Introspect(ctx, "garbage")
		require.False(t, info.Active)
		require.Empty(t, info.Subject)
	})
}
