package domain

// AuthType is the closed set of ways a request can be authenticated. The
// gateway switches exhaustively on it rather than scattering string
// comparisons across handlers.
type AuthType int

const (
	// AuthNone marks an anonymous request (no Authorization header).
	// Downstream handlers decide whether anonymous access is permitted.
	AuthNone AuthType = iota

	// AuthJWT marks a request authenticated by a signed access token.
	AuthJWT

	// AuthAPIKey marks a request authenticated by a long-lived API key.
	AuthAPIKey

	// AuthSession marks a request authenticated by the human-facing web
	// session (resolved by an external collaborator).
	AuthSession
)

func (t AuthType) String() string {
	switch t {
	case AuthJWT:
		return "jwt"
	case AuthAPIKey:
		return "api_key"
	case AuthSession:
		return "session"
	default:
		return "none"
	}
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   string
	AuthType AuthType

	// Scope carries the JWT scope claim when AuthType is AuthJWT. API-key
	// and session auth imply full access; JWT scopes are carried but not
	// yet restrictively enforced.
	Scope string
}

// Anonymous reports whether no credential was presented.
func (id Identity) Anonymous() bool { return id.AuthType == AuthNone }
