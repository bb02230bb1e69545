package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// TokenResponse is an RFC 6749 §5.1 access token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// TokenHandler serves POST /mcp/oauth/token.
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// A server with no signing secret fails closed before touching any
	// input, so misconfiguration never reveals validation behaviour.
	if !h.TokenService.Ready() {
		httpx.ErrServerError.WriteError(w)
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.ErrInvalidFormBody.WriteError(w)
		return
	}

	switch r.Form.Get("grant_type") {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r, r.Form)
	case "refresh_token":
		h.handleRefreshGrant(w, r, r.Form)
	default:
		httpx.ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *TokenHandler) handleAuthorizationCodeGrant(
	w http.ResponseWriter,
	r *http.Request,
	form url.Values,
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	code := strings.TrimSpace(form.Get("code"))
	codeVerifier := strings.TrimSpace(form.Get("code_verifier"))
	redirectURI := strings.TrimSpace(form.Get("redirect_uri"))
	clientID := strings.TrimSpace(form.Get("client_id"))

	if code == "" || codeVerifier == "" {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.ExchangeAuthorizationCode(ctx, code, codeVerifier, redirectURI, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrInvalidGrant):
			httpx.ErrInvalidGrant.WriteError(w)
		default:
			log.Error("authorization_code grant failed", "err", err)
			httpx.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		RefreshToken: pair.RefreshToken,
		Scope:        pair.Scope,
	})
}

func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refresh := form.Get("refresh_token")
	if refresh == "" {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.ExchangeRefreshToken(ctx, refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrInvalidGrant):
			httpx.ErrInvalidGrant.WriteError(w)
		default:
			log.Error("refresh grant failed", "err", err)
			httpx.ErrServerError.WriteError(w)
		}
		return
	}

	// No refresh_token in the response: the presented token is not rotated
	// and stays valid until its own expiry.
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(pair.ExpiresIn.Seconds()),
		Scope:       pair.Scope,
	})
}
