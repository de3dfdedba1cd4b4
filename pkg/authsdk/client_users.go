package authsdk

import (
	"context"
	"net/http"
)

// CreateUser registers an account. Creating an admin requires the client
// to carry an admin token.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/users", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges a username and password for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/users/login", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := decodeJSON(resp, &token, http.StatusOK); err != nil {
		return nil, err
	}
	return &token, nil
}

// UpdatePassword rotates a password. The client must be authenticated as
// the same user or as an admin.
func (c *Client) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPut, "/v1/users", req)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}
