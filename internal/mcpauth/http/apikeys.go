package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// APIKeysHandler serves the key management surface under /api/keys. All
// routes require an authenticated identity; the gateway runs in front.
type APIKeysHandler struct {
	APIKeyService *service.APIKeyService
}

type createAPIKeyBody struct {
	Name          string `json:"name"`
	ExpiresInDays int    `json:"expires_in_days,omitempty"`
}

type apiKeySummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func summarize(k domain.APIKey) apiKeySummary {
	return apiKeySummary{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		IsActive:   k.IsActive,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		ExpiresAt:  k.ExpiresAt,
	}
}

// HandleCreate serves POST /api/keys. The quota lives here, not in the
// service, so other surfaces can apply their own policy.
func (h *APIKeysHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.ErrInvalidToken.WriteError(w)
		return
	}

	var body createAPIKeyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	n, err := h.APIKeyService.Count(ctx, identity.UserID)
	if err != nil {
		log.Error("failed to count api keys", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}
	if n >= service.MaxKeysPerUser {
		httpx.NewOAuth2Error(http.StatusBadRequest, httpx.ErrorCodeInvalidRequest,
			"api key limit reached; delete an existing key first").WriteError(w)
		return
	}

	var expiresAt *time.Time
	if body.ExpiresInDays > 0 {
		t := time.Now().Add(time.Duration(body.ExpiresInDays) * 24 * time.Hour)
		expiresAt = &t
	}

	created, err := h.APIKeyService.Create(ctx, identity.UserID, body.Name, expiresAt)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKeyName) {
			httpx.ErrInvalidRequest.WriteError(w)
			return
		}
		log.Error("failed to create api key", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, created)
}

// HandleList serves GET /api/keys. Plaintext secrets never appear here:
// only id, name, display prefix and timestamps.
func (h *APIKeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.ErrInvalidToken.WriteError(w)
		return
	}

	keys, err := h.APIKeyService.List(ctx, identity.UserID)
	if err != nil {
		log.Error("failed to list api keys", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	out := make([]apiKeySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, summarize(k))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRevoke serves POST /api/keys/{id}/revoke.
func (h *APIKeysHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

// HandleReactivate serves POST /api/keys/{id}/reactivate.
func (h *APIKeysHandler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

func (h *APIKeysHandler) toggle(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.ErrInvalidToken.WriteError(w)
		return
	}

	id := r.PathValue("id")

	var err error
	if active {
		err = h.APIKeyService.Reactivate(ctx, id, identity.UserID)
	} else {
		err = h.APIKeyService.Revoke(ctx, id, identity.UserID)
	}
	if err != nil {
		if errors.Is(err, service.ErrAPIKeyNotFound) {
			httpx.NewOAuth2Error(http.StatusNotFound, httpx.ErrorCodeInvalidRequest,
				"api key not found").WriteError(w)
			return
		}
		log.Error("failed to update api key", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete serves DELETE /api/keys/{id}.
func (h *APIKeysHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.APIKeyService.Delete(ctx, r.PathValue("id"), identity.UserID); err != nil {
		if errors.Is(err, service.ErrAPIKeyNotFound) {
			httpx.NewOAuth2Error(http.StatusNotFound, httpx.ErrorCodeInvalidRequest,
				"api key not found").WriteError(w)
			return
		}
		log.Error("failed to delete api key", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
