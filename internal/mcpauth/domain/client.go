package domain

// RedirectURIOutOfBand is the out-of-band redirect target for clients that
// cannot receive a browser redirect; the authorization code is rendered on a
// page for the user to copy instead.
const RedirectURIOutOfBand = "urn:ietf:wg:oauth:2.0:oob"

// ClientRegistration is the metadata echoed back by dynamic registration.
// Nothing is persisted: clients are public, PKCE-only, and no secret is ever
// issued or checked.
type ClientRegistration struct {
	ClientID                string   `json:"client_id"`
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
}
