package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/naveenspark/marquee/pkg/domain"
)

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair. Credentials are sent
// without a bearer token and a 401 is returned as is.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthTokens, error) {
	payload, err := marshalBody(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	var toks domain.AuthTokens
	if err := c.send(ctx, http.MethodPost, "/auth/login/", payload, "", &toks); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &toks, nil
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, r RegisterRequest) (*domain.AuthTokens, error) {
	payload, err := marshalBody(r)
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	var toks domain.AuthTokens
	if err := c.send(ctx, http.MethodPost, "/auth/register/", payload, "", &toks); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &toks, nil
}

// Logout asks the backend to invalidate the current session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout/", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a new access token. It bypasses
// the retry pipeline.
func (c *Client) Refresh(ctx context.Context, refresh string) (string, error) {
	payload, err := marshalBody(map[string]string{"refresh": refresh})
	if err != nil {
		return "", fmt.Errorf("client.Refresh: %w", err)
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := c.send(ctx, http.MethodPost, "/auth/token/refresh/", payload, "", &out); err != nil {
		return "", fmt.Errorf("client.Refresh: %w", err)
	}
	if out.Access == "" {
		return "", fmt.Errorf("client.Refresh: empty access token in response")
	}
	return out.Access, nil
}
