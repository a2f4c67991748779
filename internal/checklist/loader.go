package checklist

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"ddportal/internal/models"
)

// ErrLoad reports that the checklist could not be refreshed. It never carries
// per-category detail.
var ErrLoad = errors.New("failed to load checklist")

// Source is the slice of the backend the loader needs.
type Source interface {
	Categories(ctx context.Context) ([]models.ChecklistCategory, error)
	CategoryItems(ctx context.Context, categoryID models.ID) ([]models.ChecklistItem, error)
	ResponsesForUser(ctx context.Context, userID models.ID) ([]models.Response, error)
}

// Load fetches the categories and userID's responses, then every category's
// items concurrently. Any failure aborts the whole load.
func Load(ctx context.Context, src Source, userID models.ID) (*Board, error) {
	categories, err := src.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	responses, err := src.ResponsesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	filled := make([]models.ChecklistCategory, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range categories {
		g.Go(func() error {
			items, err := src.CategoryItems(gctx, c.ID)
			if err != nil {
				return err
			}
			c.Items = items
			filled[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return NewBoard(filled, responses), nil
}

// ItemSource looks checklist items up.
type ItemSource interface {
	Items(ctx context.Context) ([]models.ChecklistItem, error)
	Item(ctx context.Context, id models.ID) (models.ChecklistItem, error)
}

// ItemsFor returns every checklist item ordered by id. Items referenced by
// responses but missing from the full list are fetched one by one.
func ItemsFor(ctx context.Context, src ItemSource, responses []models.Response) ([]models.ChecklistItem, error) {
	all, err := src.Items(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[models.ID]bool, len(all))
	for _, it := range all {
		seen[it.ID] = true
	}
	for _, r := range responses {
		if seen[r.ItemID] {
			continue
		}
		it, err := src.Item(ctx, r.ItemID)
		if err != nil {
			return nil, err
		}
		seen[r.ItemID] = true
		all = append(all, it)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}
