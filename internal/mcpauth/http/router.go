package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/internal/mcpauth/store"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/jwtx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	baseURL      string
	loginURL     string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	Sessions         SessionResolver
	TokenService     *service.TokenService
	AuthorizeService *service.AuthorizeService
	APIKeyService    *service.APIKeyService
	RegisterService  *service.RegisterService
}

func NewRouter(
	codec *jwtx.Codec,
	baseURL, loginURL, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		baseURL:      baseURL,
		loginURL:     loginURL,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth()
	r.registerAPIKeys()
	r.registerMCP()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth() {
	authorizeHandler := &AuthorizeHandler{
		AuthorizeService: r.AuthorizeService,
		Sessions:         r.Sessions,
		LoginURL:         r.loginURL,
	}
	r.Mux.HandleFunc("GET /mcp/oauth/authorize", authorizeHandler.HandleGet)
	r.Mux.HandleFunc("POST /mcp/oauth/authorize", authorizeHandler.HandlePost)

	r.Mux.Handle("POST /mcp/oauth/token", &TokenHandler{TokenService: r.TokenService})
	r.Mux.Handle("POST /mcp/oauth/register", &RegisterHandler{RegisterService: r.RegisterService})
	r.Mux.Handle("POST /mcp/oauth/introspect", &IntrospectHandler{TokenService: r.TokenService})
	r.Mux.Handle("POST /mcp/oauth/revoke", &RevokeHandler{TokenService: r.TokenService})

	r.Mux.Handle("GET /.well-known/oauth-authorization-server", ServerMetadataHandler(r.baseURL))
	r.Mux.Handle("GET /mcp/oauth/metadata", DiscoveryMetadataHandler(r.baseURL))
}

func (r *Router) registerAPIKeys() {
	gateway := r.gateway()
	keysHandler := &APIKeysHandler{APIKeyService: r.APIKeyService}

	protect := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, gateway.Middleware, RequireAuth)
	}

	r.Mux.Handle("POST /api/keys", protect(keysHandler.HandleCreate))
	r.Mux.Handle("GET /api/keys", protect(keysHandler.HandleList))
	r.Mux.Handle("POST /api/keys/{id}/revoke", protect(keysHandler.HandleRevoke))
	r.Mux.Handle("POST /api/keys/{id}/reactivate", protect(keysHandler.HandleReactivate))
	r.Mux.Handle("DELETE /api/keys/{id}", protect(keysHandler.HandleDelete))
}

func (r *Router) registerMCP() {
	gateway := r.gateway()
	mcpHandler := &MCPHandler{}

	// GET stays open to anonymous callers; POST checks identity itself.
	r.Mux.Handle("GET /mcp", httpx.Chain(
		http.HandlerFunc(mcpHandler.HandleGet), gateway.Middleware))
	r.Mux.Handle("POST /mcp", httpx.Chain(
		http.HandlerFunc(mcpHandler.HandlePost), gateway.Middleware))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.codec))
}

func (r *Router) gateway() *AuthGateway {
	return &AuthGateway{
		Codec:        r.codec,
		APIKeys:      r.APIKeyService,
		AuthorizeURL: r.baseURL + "/mcp/oauth/authorize",
	}
}
