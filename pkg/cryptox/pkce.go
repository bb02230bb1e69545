package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// PKCE challenge methods per RFC 7636.
const (
	// PKCEMethodS256 hashes the verifier with SHA-256 (recommended).
	PKCEMethodS256 = "S256"
	// PKCEMethodPlain compares the verifier directly. Weak, permitted only
	// for constrained clients that cannot hash.
	PKCEMethodPlain = "plain"
)

// ChallengeFromVerifier derives the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)) without padding.
func ChallengeFromVerifier(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyChallenge reports whether verifier satisfies the stored challenge
// under the given method. Unknown methods never match. Comparisons are
// constant-time so redemption timing reveals nothing about the challenge.
func VerifyChallenge(verifier, challenge, method string) bool {
	verifier = strings.TrimSpace(verifier)
	challenge = strings.TrimSpace(challenge)
	if verifier == "" || challenge == "" {
		return false
	}

	switch {
	case strings.EqualFold(method, PKCEMethodS256):
		derived := ChallengeFromVerifier(verifier)
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(derived)) == 1
	case strings.EqualFold(method, PKCEMethodPlain):
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) == 1
	default:
		return false
	}
}

// ValidChallengeMethod reports whether method is a supported PKCE method.
// An empty method is valid because callers default it to S256.
func ValidChallengeMethod(method string) bool {
	return method == "" ||
		strings.EqualFold(method, PKCEMethodS256) ||
		strings.EqualFold(method, PKCEMethodPlain)
}

// NormalizeChallengeMethod canonicalises a method string, defaulting to S256.
func NormalizeChallengeMethod(method string) string {
	if method == "" || strings.EqualFold(method, PKCEMethodS256) {
		return PKCEMethodS256
	}
	if strings.EqualFold(method, PKCEMethodPlain) {
		return PKCEMethodPlain
	}
	return method
}
