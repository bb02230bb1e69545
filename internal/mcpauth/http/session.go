package http

import (
	"net/http"

	"github.com/acacialabs/acacia/pkg/jwtx"
)

// DefaultSessionCookie is the session cookie name the web-login flow sets.
const DefaultSessionCookie = "acacia_session"

// CookieSessionResolver resolves browser sessions from a signed cookie. The
// login flow that mints the cookie lives outside this service; it shares the
// signing secret, so verifying the cookie is the same as verifying any other
// token we issued.
type CookieSessionResolver struct {
	Codec      *jwtx.Codec
	CookieName string
}

func (c *CookieSessionResolver) UserID(r *http.Request) (string, bool) {
	name := c.CookieName
	if name == "" {
		name = DefaultSessionCookie
	}

	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims, err := c.Codec.Verify(cookie.Value)
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
