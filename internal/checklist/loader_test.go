package checklist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddportal/internal/models"
)

type fakeSource struct {
	mu         sync.Mutex
	itemCalls  []models.ID
	failItems  models.ID
	items      []models.ChecklistItem
	fetched    []models.ID
	responses  []models.Response
	categories []models.ChecklistCategory
}

func (f *fakeSource) Categories(context.Context) ([]models.ChecklistCategory, error) {
	return f.categories, nil
}

func (f *fakeSource) CategoryItems(_ context.Context, id models.ID) ([]models.ChecklistItem, error) {
	f.mu.Lock()
	f.itemCalls = append(f.itemCalls, id)
	f.mu.Unlock()
	if id == f.failItems {
		return nil, errors.New("backend 500")
	}
	return []models.ChecklistItem{{ID: id*10 + 1, CategoryID: id}}, nil
}

func (f *fakeSource) ResponsesForUser(_ context.Context, userID models.ID) ([]models.Response, error) {
	return f.responses, nil
}

func (f *fakeSource) Items(context.Context) ([]models.ChecklistItem, error) {
	return f.items, nil
}

func (f *fakeSource) Item(_ context.Context, id models.ID) (models.ChecklistItem, error) {
	f.fetched = append(f.fetched, id)
	return models.ChecklistItem{ID: id, Text: "fetched"}, nil
}

func TestLoadKeepsCategoryOrder(t *testing.T) {
	src := &fakeSource{
		categories: []models.ChecklistCategory{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}},
		responses:  []models.Response{{ID: 7, ItemID: 11, UserID: models.SomeID(4)}},
	}
	b, err := Load(context.Background(), src, 4)
	require.NoError(t, err)
	require.Len(t, b.Categories, 3)
	assert.Equal(t, "c", b.Categories[0].Name)
	assert.Equal(t, models.ID(31), b.Categories[0].Items[0].ID)
	assert.Equal(t, "b", b.Categories[2].Name)
	assert.ElementsMatch(t, []models.ID{1, 2, 3}, src.itemCalls)
	assert.NotNil(t, b.Response(11))
}

func TestLoadAbortsOnAnyCategoryFailure(t *testing.T) {
	src := &fakeSource{
		categories: []models.ChecklistCategory{{ID: 1}, {ID: 2}, {ID: 3}},
		failItems:  2,
	}
	b, err := Load(context.Background(), src, 4)
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestItemsForFallsBackToSingleFetch(t *testing.T) {
	src := &fakeSource{items: []models.ChecklistItem{{ID: 1, Text: "one"}}}
	items, err := ItemsFor(context.Background(), src, []models.Response{{ItemID: 1}, {ItemID: 9}, {ItemID: 9}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "one", items[0].Text)
	assert.Equal(t, "fetched", items[1].Text)
	assert.Equal(t, []models.ID{9}, src.fetched)
}
