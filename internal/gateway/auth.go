package gateway

import (
	"context"

	"ddportal/internal/models"
)

// LoginResult is the body of POST /auth/login. Either field may be missing.
type LoginResult struct {
	Token string           `json:"token"`
	User  *models.Identity `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, &res); err != nil {
		return LoginResult{}, err
	}
	return res, nil
}

// Me returns the identity behind the credential bound to ctx.
func (c *Client) Me(ctx context.Context) (models.Identity, error) {
	var id models.Identity
	if err := c.get(ctx, "/auth/me", &id); err != nil {
		return models.Identity{}, err
	}
	return id, nil
}
