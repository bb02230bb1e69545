/*
Package authsdk provides a client SDK for the acacia auth service.

Client covers the unauthenticated surface: dynamic registration, the PKCE
authorization flow, token exchange, introspection and revocation. Session
wraps an issued token pair and keeps it fresh across calls to protected
endpoints.

	client := authsdk.NewClient("https://auth.example.com")

	reg, err := client.Register(ctx, "my agent", nil)
	pkce, err := authsdk.NewPKCE()
	url := client.AuthorizeURL(reg.ClientID, "http://127.0.0.1:8912/cb", "read", "state-1", pkce)

	// ... user approves in a browser, the code comes back ...

	session, err := client.ExchangeCode(ctx, code, pkce.Verifier, reg.ClientID, "")
	resp, err := session.Do(ctx, http.MethodPost, "/mcp", nil)
*/
package authsdk
