package http

import (
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/internal/mcpauth/store/codes"
	"github.com/acacialabs/acacia/internal/mcpauth/store/drivers/sqlite"
	"github.com/acacialabs/acacia/pkg/jwtx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// fakeSessions resolves every request to a fixed user, or to no session at
// all when userID is empty.
type fakeSessions struct {
	userID string
}

func (f *fakeSessions) UserID(*nethttp.Request) (string, bool) {
	return f.userID, f.userID != ""
}

type testEnv struct {
	router *Router
	codes  codes.Store
	store  *sqlite.Store
	codec  *jwtx.Codec
}

func newTestEnv(t *testing.T, sessions SessionResolver) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec := jwtx.NewCodec([]byte("test-secret"), "https://auth.test")
	codeStore := codes.NewMemoryStore(nil)

	router := NewRouter(codec, "https://auth.test", "https://auth.test/login", "test", st, slogx.Discard())
	router.Sessions = sessions
	router.TokenService = &service.TokenService{
		Codec:      codec,
		Codes:      codeStore,
		Store:      st,
		Issuer:     "https://auth.test",
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
	router.AuthorizeService = &service.AuthorizeService{Codes: codeStore}
	router.APIKeyService = &service.APIKeyService{Store: st}
	router.RegisterService = &service.RegisterService{}
	router.ApplyRoutes()

	return &testEnv{router: router, codes: codeStore, store: st, codec: codec}
}
