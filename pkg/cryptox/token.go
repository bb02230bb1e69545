package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize192 provides 192 bits of entropy (32 chars base64url).
	TokenSize192 = 24
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
	// TokenSize512 provides 512 bits of entropy (86 chars base64url).
	TokenSize512 = 64
)

// APIKeyPrefix is the fixed literal prefix on every issued API key. The
// gateway uses it to tell key-shaped bearer credentials apart from JWTs.
const APIKeyPrefix = "aca_"

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, returned as a base64url string (URL-safe, no
// padding). Used for authorization codes, refresh tokens and PKCE verifiers.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error. Use only where
// failure of the system randomness source is unrecoverable anyway.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token as
// a base64url string (43 chars). Stores hold fingerprints, never the opaque
// value, so a leaked table cannot be replayed as credentials while lookups by
// presented token stay a single indexed query.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateAPIKey mints a new plaintext API key: the fixed prefix followed by
// a 256-bit random suffix. The plaintext is handed out exactly once; callers
// persist FingerprintToken(key) only.
func GenerateAPIKey() (string, error) {
	suffix, err := GenerateToken(TokenSize256)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + suffix, nil
}

// IsAPIKey reports whether a bearer credential is API-key shaped.
func IsAPIKey(token string) bool {
	return strings.HasPrefix(token, APIKeyPrefix)
}

// DisplayPrefix returns the short leading fragment of a key that is safe to
// show in listings after creation (prefix plus the first few suffix chars).
func DisplayPrefix(key string) string {
	const visible = len(APIKeyPrefix) + 8
	if len(key) <= visible {
		return key
	}
	return key[:visible]
}
