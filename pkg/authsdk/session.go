package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Session holds an issued token pair and refreshes the access token when it
// nears expiry. Safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *Client, tokens *TokenResponse) *Session {
	return &Session{
		client:       c,
		accessToken:  tokens.AccessToken,
		refreshToken: tokens.RefreshToken,
		// Refresh slightly early so in-flight requests don't race expiry.
		expiresAt: time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - 30*time.Second),
	}
}

// AccessToken returns the current access token without refreshing it.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the long-lived refresh token.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Do performs an authenticated request against the service, refreshing the
// access token first when it has expired.
func (s *Session) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	token, err := s.validToken(ctx)
	if err != nil {
		return nil, err
	}

	return s.client.doRequest(ctx, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (s *Session) validToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token held")
	}

	tokens, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	s.accessToken = tokens.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - 30*time.Second)
	return s.accessToken, nil
}
