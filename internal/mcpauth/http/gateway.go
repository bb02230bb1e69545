package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/cryptox"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/jwtx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

type identityKey struct{}

// IdentityFromContext returns the identity the gateway resolved for this
// request. The second return is false only when the gateway never ran.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// WithIdentity stores an identity on the context. Exported for handler tests.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// AuthGateway authenticates Bearer credentials on their way to protected
// handlers. A request with no Authorization header passes through as
// anonymous; downstream handlers decide whether anonymous access is allowed.
//
// Credential resolution order: JWT first, then the API-key prefix. A
// syntactically valid JWT always wins, so an API-key-shaped string inside a
// valid JWT can never shadow the JWT path.
type AuthGateway struct {
	Codec   *jwtx.Codec
	APIKeys *service.APIKeyService

	// AuthorizeURL is included in the WWW-Authenticate challenge so clients
	// that fail authentication can discover where to start the flow.
	AuthorizeURL string
}

// Middleware wraps next with the gateway's credential check.
func (g *AuthGateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, domain.Identity{})))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			g.challenge(w)
			return
		}
		token = strings.TrimSpace(token)

		if claims, err := g.Codec.Verify(token); err == nil {
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, domain.Identity{
				UserID:   claims.Subject,
				AuthType: domain.AuthJWT,
				Scope:    claims.Scope,
			})))
			return
		}

		if cryptox.IsAPIKey(token) {
			identity, err := g.APIKeys.Validate(ctx, token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, *identity)))
				return
			}
			if !errors.Is(err, service.ErrInvalidAPIKey) {
				log.Error("api key validation failed", "err", err)
				httpx.ErrServerError.WriteError(w)
				return
			}
		}

		g.challenge(w)
	})
}

// RequireAuth rejects anonymous requests. Use behind Middleware for routes
// where read-only anonymous access is not acceptable.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || id.Anonymous() {
			httpx.ErrInvalidToken.WriteError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *AuthGateway) challenge(w http.ResponseWriter) {
	if g.AuthorizeURL != "" {
		w.Header().Set("WWW-Authenticate",
			fmt.Sprintf(`Bearer error="invalid_token", authorization_uri=%q`, g.AuthorizeURL))
	}
	httpx.ErrInvalidToken.WriteError(w)
}
