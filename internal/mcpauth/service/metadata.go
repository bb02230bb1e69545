package service

import "strings"

// AuthorizationServerMetadata is the RFC 8414 discovery document.
type AuthorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint"`
	IntrospectionEndpoint             string   `json:"introspection_endpoint"`
	RevocationEndpoint                string   `json:"revocation_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
}

// ServiceMetadata is a secondary discovery document describing the auth
// surface in front of the tool endpoint, for clients that look under the
// service's own path instead of /.well-known.
type ServiceMetadata struct {
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	RegistrationEndpoint  string   `json:"registration_endpoint"`
	MetadataEndpoint      string   `json:"metadata_endpoint"`
	ScopesSupported       []string `json:"scopes_supported"`
}

// ServerMetadata builds the RFC 8414 document for a deployment rooted at
// baseURL. Pure function of the base URL; no state is consulted.
func ServerMetadata(baseURL string) AuthorizationServerMetadata {
	base := strings.TrimRight(baseURL, "/")
	return AuthorizationServerMetadata{
		Issuer:                            base,
		AuthorizationEndpoint:             base + "/mcp/oauth/authorize",
		TokenEndpoint:                     base + "/mcp/oauth/token",
		RegistrationEndpoint:              base + "/mcp/oauth/register",
		IntrospectionEndpoint:             base + "/mcp/oauth/introspect",
		RevocationEndpoint:                base + "/mcp/oauth/revoke",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code", "refresh_token"},
		CodeChallengeMethodsSupported:     []string{"S256", "plain"},
		TokenEndpointAuthMethodsSupported: []string{"none"},
		ScopesSupported:                   []string{"read", "write", "admin"},
	}
}

// DiscoveryMetadata builds the service-level discovery document.
func DiscoveryMetadata(baseURL string) ServiceMetadata {
	base := strings.TrimRight(baseURL, "/")
	return ServiceMetadata{
		AuthorizationEndpoint: base + "/mcp/oauth/authorize",
		TokenEndpoint:         base + "/mcp/oauth/token",
		RegistrationEndpoint:  base + "/mcp/oauth/register",
		MetadataEndpoint:      base + "/.well-known/oauth-authorization-server",
		ScopesSupported:       []string{"read", "write", "admin"},
	}
}
