package authsdk

import "github.com/acacialabs/acacia/pkg/cryptox"

// PKCE is a verifier/challenge pair for one authorization attempt. The
// verifier stays with the client; only the challenge travels in the
// authorization request.
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// NewPKCE generates a fresh S256 verifier/challenge pair.
func NewPKCE() (*PKCE, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	return &PKCE{
		Verifier:  verifier,
		Challenge: cryptox.ChallengeFromVerifier(verifier),
		Method:    cryptox.PKCEMethodS256,
	}, nil
}
