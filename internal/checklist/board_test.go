package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddportal/internal/models"
)

func sampleCategories() []models.ChecklistCategory {
	return []models.ChecklistCategory{
		{ID: 1, Name: "Governance", Items: []models.ChecklistItem{{ID: 11, Text: "Board minutes"}, {ID: 12, Text: "Policies"}}},
		{ID: 2, Name: "Security", Items: []models.ChecklistItem{{ID: 21, Text: "Pen test"}}},
	}
}

func TestNewBoardIndexesByItem(t *testing.T) {
	b := NewBoard(sampleCategories(), []models.Response{
		{ID: 1, ItemID: 11, UserID: models.SomeID(5), Response: models.AnswerNo},
		{ID: 2, ItemID: 0, Response: models.AnswerYes},
		{ID: 3, ItemID: 21, UserID: models.SomeID(6), Response: models.AnswerNA},
	})
	require.NotNil(t, b.Response(11))
	assert.Nil(t, b.Response(12))
	assert.Equal(t, 2, b.Answered())
}

func TestMergedMarksItemAnsweredByViewer(t *testing.T) {
	b := NewBoard(sampleCategories(), nil)
	echo := models.Response{ID: 99, FilePaths: []models.FileRef{{StoredFileName: "s", OriginalName: "a.pdf"}}}

	next := b.Merged(12, 5, models.AnswerYes, echo)

	assert.Nil(t, b.Response(12), "original board is untouched")
	r := next.Response(12)
	require.NotNil(t, r)
	assert.Equal(t, models.ID(99), r.ID)
	assert.Equal(t, models.ID(12), r.ItemID)
	assert.Equal(t, models.SomeID(5), r.UserID)
	assert.Equal(t, models.AnswerYes, r.Response)
	assert.Len(t, r.FilePaths, 1)

	o := Resolve(5, r)
	assert.True(t, o.IsOwnResponse)
	assert.False(t, o.IsReadOnly)
}

func TestMergedKeepsAttributionAndDefaultsFiles(t *testing.T) {
	b := NewBoard(sampleCategories(), []models.Response{{ID: 1, ItemID: 11, ResponderEmail: "me@x.y", Response: models.AnswerNo}})
	r := b.Merged(11, 5, models.AnswerNeedHelp, models.Response{ID: 1}).Response(11)
	require.NotNil(t, r)
	assert.Equal(t, "me@x.y", r.ResponderEmail)
	assert.NotNil(t, r.FilePaths)
	assert.Empty(t, r.FilePaths)
}

func TestView(t *testing.T) {
	b := NewBoard(sampleCategories(), []models.Response{
		{ID: 1, ItemID: 11, UserID: models.SomeID(5), Response: models.AnswerNo},
		{ID: 3, ItemID: 21, UserID: models.SomeID(6), Response: models.AnswerNA},
	})
	view := b.View(5)
	require.Len(t, view, 2)
	require.Len(t, view[0].Items, 2)
	assert.True(t, view[0].Items[0].IsOwnResponse)
	assert.Nil(t, view[0].Items[1].Response)
	assert.False(t, view[0].Items[1].IsReadOnly)
	assert.True(t, view[1].Items[0].IsReadOnly)
}
