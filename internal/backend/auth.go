package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Tokens is the auth server's session payload.
type Tokens struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	ExpiresAt    int64   `json:"expires_at"`
	RefreshToken string  `json:"refresh_token"`
	User         Account `json:"user"`
}

// Expiry prefers the absolute expiry and falls back to expires_in.
func (t Tokens) Expiry(now time.Time) time.Time {
	if t.ExpiresAt > 0 {
		return time.Unix(t.ExpiresAt, 0)
	}
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Tokens, error) {
	var tokens Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		apiKey: c.anonKey,
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &tokens)
	return tokens, err
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (Tokens, error) {
	var tokens Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		apiKey: c.anonKey,
		body: map[string]string{
			"refresh_token": refreshToken,
		},
	}, &tokens)
	return tokens, err
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		apiKey: c.anonKey,
		bearer: accessToken,
	}, nil)
}

// CreateAccount registers a confirmed account through the admin endpoint so
// the caller's own session is left untouched.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	if c.serviceRoleKey == "" {
		return Account{}, ErrServiceRoleMissing
	}

	var account Account
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/admin/users",
		apiKey: c.serviceRoleKey,
		bearer: c.serviceRoleKey,
		body: map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": true,
		},
	}, &account)
	return account, err
}

// Ping checks that the auth server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/health",
		apiKey: c.anonKey,
	}, nil)
}
