package gateway

import (
	"context"

	"ddportal/internal/models"
)

func (c *Client) Companies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	if err := c.get(ctx, "/companies", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCompany(ctx context.Context, name string) error {
	return c.post(ctx, "/companies", map[string]string{"name": name}, nil)
}

func (c *Client) UpdateCompany(ctx context.Context, id models.ID, name string) error {
	return c.put(ctx, "/companies/"+id.String(), map[string]string{"name": name}, nil)
}

func (c *Client) DeleteCompany(ctx context.Context, id models.ID) error {
	return c.del(ctx, "/companies/"+id.String(), nil)
}
