package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// RegisterHandler serves POST /mcp/oauth/register (RFC 7591 dynamic client
// registration, stateless variant).
type RegisterHandler struct {
	RegisterService *service.RegisterService
}

type registerRequestBody struct {
	ClientName   string   `json:"client_name"`
	RedirectURIs []string `json:"redirect_uris"`
	GrantTypes   []string `json:"grant_types"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body registerRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.ErrInvalidClientMetadata.WriteError(w)
		return
	}

	reg, err := h.RegisterService.Register(ctx, service.RegisterRequest{
		ClientName:   body.ClientName,
		RedirectURIs: body.RedirectURIs,
		GrantTypes:   body.GrantTypes,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingClientName) {
			httpx.ErrInvalidClientMetadata.WriteError(w)
			return
		}
		log.Error("client registration failed", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, reg)
}
