package http

import (
	"net/http"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/pkg/httpx"
)

// MCPHandler is the protected tool endpoint sitting behind the gateway.
// Reads are open to anonymous callers; anything else needs a resolved
// identity. The auth type switch is exhaustive so a new credential scheme
// cannot slip through unhandled.
type MCPHandler struct{}

type mcpStatusResponse struct {
	Status   string `json:"status"`
	UserID   string `json:"user_id,omitempty"`
	AuthType string `json:"auth_type"`
	Scope    string `json:"scope,omitempty"`
}

// HandleGet serves GET /mcp: a read-only status view, anonymous permitted.
func (h *MCPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, mcpStatusResponse{
		Status:   "ok",
		UserID:   identity.UserID,
		AuthType: identity.AuthType.String(),
		Scope:    identity.Scope,
	})
}

// HandlePost serves POST /mcp: the tool invocation surface.
func (h *MCPHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.ErrInvalidToken.WriteError(w)
		return
	}

	switch identity.AuthType {
	case domain.AuthNone:
		httpx.ErrInvalidToken.WriteError(w)
	case domain.AuthJWT, domain.AuthAPIKey, domain.AuthSession:
		// Scope claims are accepted but not restrictively enforced yet:
		// api_key and session imply full access, and JWT scopes are
		// recorded on the identity for handlers that want them.
		httpx.WriteJSON(w, http.StatusOK, mcpStatusResponse{
			Status:   "ok",
			UserID:   identity.UserID,
			AuthType: identity.AuthType.String(),
			Scope:    identity.Scope,
		})
	default:
		httpx.ErrInvalidToken.WriteError(w)
	}
}
