package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AuthUser is the user block of the login response.
type AuthUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// AuthResponse is returned by POST /auth/login.
type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"type"`
	ExpiresIn int64    `json:"expiresIn"`
	User      AuthUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the backend and stores the token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	raw, err := c.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if auth.Token == "" {
		return nil, errors.New("login response did not contain a token")
	}

	c.session.Login(auth.Token, time.Duration(auth.ExpiresIn)*time.Second)
	return &auth, nil
}

// Logout drops the credential; the backend keeps no server-side session.
func (c *Client) Logout() {
	c.session.Logout()
}
