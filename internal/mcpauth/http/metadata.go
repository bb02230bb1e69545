package http

import (
	"net/http"

	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/pkg/httpx"
)

// ServerMetadataHandler serves GET /.well-known/oauth-authorization-server.
func ServerMetadataHandler(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, service.ServerMetadata(baseURL))
	}
}

// DiscoveryMetadataHandler serves GET /mcp/oauth/metadata.
func DiscoveryMetadataHandler(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, service.DiscoveryMetadata(baseURL))
	}
}
