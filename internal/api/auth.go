package api

import (
	"context"
	"fmt"
)

// RegisterRequest is the payload for POST /register. The confirm-password
// check happens in the forms package before this ever reaches the wire.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns the issued bearer token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, "POST", "/register", req, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("api: register: response carried no token")
	}
	return resp.Token, nil
}

// Login authenticates and returns the issued bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, "POST", "/login", req, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("api: login: response carried no token")
	}
	return resp.Token, nil
}
