package gateway

import (
	"context"

	"ddportal/internal/models"
)

// Categories returns the checklist categories without their items.
func (c *Client) Categories(ctx context.Context) ([]models.ChecklistCategory, error) {
	var out []models.ChecklistCategory
	if err := c.get(ctx, "/checklist/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CategoryItems(ctx context.Context, categoryID models.ID) ([]models.ChecklistItem, error) {
	var out []models.ChecklistItem
	if err := c.get(ctx, "/checklist/categories/"+categoryID.String()+"/items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Items(ctx context.Context) ([]models.ChecklistItem, error) {
	var out []models.ChecklistItem
	if err := c.get(ctx, "/checklist/items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Item(ctx context.Context, id models.ID) (models.ChecklistItem, error) {
	var it models.ChecklistItem
	if err := c.get(ctx, "/checklist/items/"+id.String(), &it); err != nil {
		return models.ChecklistItem{}, err
	}
	return it, nil
}
