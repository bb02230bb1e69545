package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ClientRegistration is the metadata returned by dynamic registration.
type ClientRegistration struct {
	ClientID                string   `json:"client_id"`
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
}

// TokenResponse is an RFC 6749 §5.1 access token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Introspection is an RFC 7662 introspection response.
type Introspection struct {
	Active    bool   `json:"active"`
	Subject   string `json:"sub,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// ServerMetadata is the RFC 8414 discovery document.
type ServerMetadata struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	RegistrationEndpoint          string   `json:"registration_endpoint"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
	ScopesSupported               []string `json:"scopes_supported"`
}

// Register performs dynamic client registration.
func (c *Client) Register(ctx context.Context, clientName string, redirectURIs []string) (*ClientRegistration, error) {
	body, err := json.Marshal(map[string]any{
		"client_name":   clientName,
		"redirect_uris": redirectURIs,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/mcp/oauth/register",
		bytes.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}

	var reg ClientRegistration
	if err := decodeResponse(resp, http.StatusCreated, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// AuthorizeURL builds the URL the user agent visits to start the consent
// flow. The state value comes back unmodified on the redirect.
func (c *Client) AuthorizeURL(clientID, redirectURI, scope, state string, pkce *PKCE) string {
	q := url.Values{
		"response_type":         {"code"},
		"client_id":             {clientID},
		"redirect_uri":          {redirectURI},
		"code_challenge":        {pkce.Challenge},
		"code_challenge_method": {pkce.Method},
	}
	if scope != "" {
		q.Set("scope", scope)
	}
	if state != "" {
		q.Set("state", state)
	}
	return c.url("/mcp/oauth/authorize") + "?" + q.Encode()
}

// ExchangeCode redeems an authorization code. redirectURI and clientID are
// optional; when supplied they must match the values from the authorization
// request.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier, clientID, redirectURI string) (*Session, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {verifier},
	}
	if clientID != "" {
		form.Set("client_id", clientID)
	}
	if redirectURI != "" {
		form.Set("redirect_uri", redirectURI)
	}

	tokens, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokens), nil
}

// Refresh redeems a refresh token for a fresh access token. The refresh
// token itself is not rotated and stays usable.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

// Introspect reports the status of an access token.
func (c *Client) Introspect(ctx context.Context, token string) (*Introspection, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/mcp/oauth/introspect",
		strings.NewReader(url.Values{"token": {token}}.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	if err != nil {
		return nil, err
	}

	var info Introspection
	if err := decodeResponse(resp, http.StatusOK, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Revoke revokes a refresh token. Unknown tokens do not error.
func (c *Client) Revoke(ctx context.Context, refreshToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/mcp/oauth/revoke",
		strings.NewReader(url.Values{"token": {refreshToken}}.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	if err != nil {
		return err
	}
	return decodeResponse(resp, http.StatusOK, nil)
}

// Metadata fetches the RFC 8414 discovery document.
func (c *Client) Metadata(ctx context.Context) (*ServerMetadata, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/oauth-authorization-server", nil, nil)
	if err != nil {
		return nil, err
	}

	var meta ServerMetadata
	if err := decodeResponse(resp, http.StatusOK, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/mcp/oauth/token",
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeResponse(resp, http.StatusOK, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token response carried no access token")
	}
	return &tokens, nil
}
