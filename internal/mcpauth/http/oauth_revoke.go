package http

import (
	"net/http"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// RevokeHandler serves POST /mcp/oauth/revoke following RFC 7009. Only
// refresh tokens can be revoked; access tokens expire on their own. The
// endpoint returns 200 with an empty object even for invalid or unknown
// tokens so it cannot be used for token scanning.
type RevokeHandler struct {
	TokenService *service.TokenService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}

	token := r.Form.Get("token")
	hint := r.Form.Get("token_type_hint")

	if token != "" && (hint == "" || hint == "refresh_token") {
		if err := h.TokenService.RevokeRefreshToken(ctx, token); err != nil {
			// Still 200 per RFC 7009.
			log.Warn("refresh token revocation failed", "err", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
