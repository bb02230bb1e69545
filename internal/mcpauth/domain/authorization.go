package domain

import "time"

// DefaultScope is granted when an authorization request names no scope.
const DefaultScope = "read"

// PendingAuthorization is a transient record keyed by its one-time code.
// It exists at most once, is consumed exactly once, and is never mutated.
type PendingAuthorization struct {
	UserID              string    `json:"user_id"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	Scope               string    `json:"scope"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	CreatedAt           time.Time `json:"created_at"`
}
