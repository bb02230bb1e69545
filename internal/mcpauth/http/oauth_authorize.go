package http

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SessionResolver reports the user behind an existing browser session.
// The web-login flow itself lives outside this service.
type SessionResolver interface {
	// UserID returns the authenticated user for the request, or false when
	// no valid session is present.
	UserID(r *http.Request) (string, bool)
}

// AuthorizeHandler serves GET and POST /mcp/oauth/authorize: the consent
// screen and the approve/deny decision. This path is driven by a human in a
// browser, so failures render HTML pages rather than JSON errors.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	Sessions         SessionResolver

	// LoginURL is where unauthenticated browsers are sent. The original
	// authorize URL is carried in return_to so login can re-enter the flow
	// with the query intact.
	LoginURL string
}

func authorizeRequestFromValues(v url.Values) service.AuthorizeRequest {
	return service.AuthorizeRequest{
		ResponseType:        v.Get("response_type"),
		ClientID:            v.Get("client_id"),
		RedirectURI:         v.Get("redirect_uri"),
		Scope:               v.Get("scope"),
		State:               v.Get("state"),
		CodeChallenge:       v.Get("code_challenge"),
		CodeChallengeMethod: v.Get("code_challenge_method"),
	}
}

// HandleGet validates the request and renders the consent screen.
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req := authorizeRequestFromValues(r.URL.Query())

	// Validation failures render a page, not a redirect: redirect_uri is
	// itself unvalidated at this point and must not receive errors.
	if err := h.AuthorizeService.Validate(req); err != nil {
		h.renderError(w, r, "The authorization request is malformed or missing required parameters.")
		return
	}

	if _, ok := h.Sessions.UserID(r); !ok {
		h.redirectToLogin(w, r)
		return
	}

	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		scope = domain.DefaultScope
	}

	h.renderPage(w, r, http.StatusOK, "consent.html", map[string]any{
		"ClientID":            req.ClientID,
		"RedirectURI":         req.RedirectURI,
		"Scope":               scope,
		"Scopes":              httpx.ParseSpaceDelimitedFields(scope),
		"State":               req.State,
		"CodeChallenge":       req.CodeChallenge,
		"CodeChallengeMethod": req.CodeChallengeMethod,
		"ActionURL":           r.URL.Path,
	})
}

// HandlePost processes the consent decision.
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, "The consent form could not be read.")
		return
	}

	req := authorizeRequestFromValues(r.Form)
	if err := h.AuthorizeService.Validate(req); err != nil {
		h.renderError(w, r, "The authorization request is malformed or missing required parameters.")
		return
	}

	userID, ok := h.Sessions.UserID(r)
	if !ok {
		h.redirectToLogin(w, r)
		return
	}

	if r.Form.Get("decision") != "approve" {
		h.redirectDenied(w, r, req)
		return
	}

	resp, err := h.AuthorizeService.Approve(ctx, userID, req)
	if err != nil {
		log.Error("failed to issue authorization code", "err", err)
		h.renderError(w, r, "Something went wrong issuing the authorization code. Try again.")
		return
	}

	if nonRedirectable(resp.RedirectURI) {
		h.renderPage(w, r, http.StatusOK, "code.html", map[string]any{"Code": resp.Code})
		return
	}

	q := url.Values{"code": {resp.Code}}
	if resp.State != "" {
		q.Set("state", resp.State)
	}
	http.Redirect(w, r, appendQuery(resp.RedirectURI, q), http.StatusFound)
}

func (h *AuthorizeHandler) redirectDenied(w http.ResponseWriter, r *http.Request, req service.AuthorizeRequest) {
	if nonRedirectable(req.RedirectURI) {
		h.renderError(w, r, "Access was denied.")
		return
	}

	q := url.Values{"error": {httpx.ErrorCodeAccessDenied}}
	if req.State != "" {
		q.Set("state", req.State)
	}
	http.Redirect(w, r, appendQuery(req.RedirectURI, q), http.StatusFound)
}

func (h *AuthorizeHandler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	q := url.Values{"return_to": {r.URL.Path + "?" + r.URL.RawQuery}}
	http.Redirect(w, r, appendQuery(h.LoginURL, q), http.StatusFound)
}

func (h *AuthorizeHandler) renderError(w http.ResponseWriter, r *http.Request, message string) {
	h.renderPage(w, r, http.StatusBadRequest, "error.html", map[string]any{"Message": message})
}

func (h *AuthorizeHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	log := slogx.FromContext(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	httpx.NoCache(w)
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render page", "template", name, "err", err)
	}
}

// nonRedirectable reports whether the redirect target belongs to a native or
// CLI client that cannot receive a browser redirect: the OOB URN or a
// loopback address. Those get the code rendered on a page instead.
func nonRedirectable(redirectURI string) bool {
	if redirectURI == domain.RedirectURIOutOfBand {
		return true
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func appendQuery(target string, q url.Values) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + q.Encode()
}
