package http

import (
	"net/http"
	"strings"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
)

// IntrospectHandler serves POST /mcp/oauth/introspect following RFC 7662.
// Any failure to verify collapses to {"active": false}; the endpoint never
// reveals why a token is inactive.
type IntrospectHandler struct {
	TokenService *service.TokenService
}

func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}

	token := r.Form.Get("token")
	hint := r.Form.Get("token_type_hint")

	// Only self-contained access tokens can be introspected here.
	if token == "" || (hint != "" && hint != "access_token") {
		httpx.WriteJSON(w, http.StatusOK, service.Introspection{})
		return
	}

	info := h.TokenService.Introspect(r.Context(), strings.TrimSpace(token))
	httpx.WriteJSON(w, http.StatusOK, info)
}
