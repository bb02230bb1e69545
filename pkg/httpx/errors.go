package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// OAuth2 error codes per RFC 6749 (plus the RFC 7591 registration code).
const (
	ErrorCodeInvalidRequest        = "invalid_request"
	ErrorCodeInvalidGrant          = "invalid_grant"
	ErrorCodeUnsupportedGrantType  = "unsupported_grant_type"
	ErrorCodeInvalidClientMetadata = "invalid_client_metadata"
	ErrorCodeInvalidToken          = "invalid_token"
	ErrorCodeAccessDenied          = "access_denied"
	ErrorCodeServerError           = "server_error"
)

// OAuth2Error is a standard OAuth2 error response per RFC 6749 §5.2. It
// implements the error interface and knows how to write itself as JSON.
type OAuth2Error struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g. "invalid_grant").
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description,omitempty"`
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this OAuth2Error to an HTTP response writer.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter or is otherwise malformed.
	ErrInvalidRequest = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidGrant is returned when the authorization code or refresh
	// token is invalid, expired, already used, or the PKCE verifier does
	// not match.
	ErrInvalidGrant = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "the provided grant is invalid or expired",
	}

	// ErrUnsupportedGrantType is returned for any grant_type outside the
	// supported pair.
	ErrUnsupportedGrantType = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedGrantType,
		Description: "grant type not supported",
	}

	// ErrInvalidClientMetadata is returned when dynamic registration is
	// missing required client metadata.
	ErrInvalidClientMetadata = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidClientMetadata,
		Description: "client_name is required",
	}

	// ErrInvalidToken is returned when a bearer credential is malformed,
	// expired or unverifiable.
	ErrInvalidToken = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	// ErrServerError is returned when the server cannot fulfil the request,
	// e.g. no signing secret is configured. Internal detail never leaks.
	ErrServerError = &OAuth2Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrInvalidFormBody is returned when the form body cannot be parsed.
	ErrInvalidFormBody = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "invalid form body",
	}
)

// NewOAuth2Error creates an OAuth2Error with a custom description.
func NewOAuth2Error(statusCode int, code, description string) *OAuth2Error {
	return &OAuth2Error{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}
