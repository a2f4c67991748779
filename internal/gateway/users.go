package gateway

import (
	"context"

	"ddportal/internal/models"
)

type NewUser struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CompanyID models.ID `json:"companyId"`
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.get(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) User(ctx context.Context, id models.ID) (models.User, error) {
	var u models.User
	if err := c.get(ctx, "/users/"+id.String(), &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// CreateUser returns the id the backend assigned, if it reported one.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (models.OptionalID, error) {
	var res struct {
		UserID models.OptionalID `json:"userId"`
	}
	if err := c.post(ctx, "/users", u, &res); err != nil {
		return models.OptionalID{}, err
	}
	return res.UserID, nil
}

func (c *Client) UpdateUser(ctx context.Context, id models.ID, role string, companyID models.ID) error {
	body := struct {
		Role      string    `json:"role"`
		CompanyID models.ID `json:"companyId"`
	}{role, companyID}
	return c.put(ctx, "/users/"+id.String(), body, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id models.ID) error {
	return c.del(ctx, "/users/"+id.String(), nil)
}

func (c *Client) SetPassword(ctx context.Context, id models.ID, password string) error {
	return c.put(ctx, "/users/"+id.String()+"/password", map[string]string{"password": password}, nil)
}

// SendCredentials asks the backend to e-mail the user their credentials.
func (c *Client) SendCredentials(ctx context.Context, id models.ID, password string) error {
	return c.post(ctx, "/users/"+id.String()+"/send-credentials", map[string]string{"password": password}, nil)
}
