package api

import "context"

// EditUserRequest is the payload for PUT /edit-user. AuthID selects the
// account; the remaining fields replace the stored values.
type EditUserRequest struct {
	AuthID   int64  `json:"auth_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Users lists all accounts. A body without a users array (the service
// answers 204 with an {ok} body when the table is empty) means no users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, "GET", "/users", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// Admins lists administrators with their online status.
func (c *Client) Admins(ctx context.Context) ([]Admin, error) {
	var resp struct {
		Admins []Admin `json:"admins"`
	}
	if err := c.do(ctx, "GET", "/admins", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Admins, nil
}

// EditUser updates an account.
func (c *Client) EditUser(ctx context.Context, req EditUserRequest) error {
	return c.do(ctx, "PUT", "/edit-user", req, nil, true)
}

// DeleteUser removes an account by auth id.
func (c *Client) DeleteUser(ctx context.Context, authID int64) error {
	body := struct {
		AuthID int64 `json:"auth_id"`
	}{AuthID: authID}
	return c.do(ctx, "DELETE", "/delete-user", body, nil, true)
}
