package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddportal/internal/models"
)

func TestFilterCompanies(t *testing.T) {
	cs := []models.Company{{ID: 1, Name: "Acme Corp"}, {ID: 2, Name: "Globex"}}

	assert.Len(t, filterCompanies(cs, ""), 2)
	assert.Equal(t, []models.Company{{ID: 1, Name: "Acme Corp"}}, filterCompanies(cs, "  acme "))
	assert.Empty(t, filterCompanies(cs, "initech"))
}

func TestFilterUsersMatchesEmailOrCompany(t *testing.T) {
	us := []models.User{
		{ID: 1, Email: "ann@acme.test", CompanyName: "Acme"},
		{ID: 2, Email: "bob@globex.test", CompanyName: "Globex"},
	}

	got := filterUsers(us, "GLOBEX")
	require.Len(t, got, 1)
	assert.Equal(t, models.ID(2), got[0].ID)

	got = filterUsers(us, "ann@")
	require.Len(t, got, 1)
	assert.Equal(t, models.ID(1), got[0].ID)
}

func TestDetailRows(t *testing.T) {
	u := models.User{ID: 7, Email: "owner@acme.test"}
	items := []models.ChecklistItem{{ID: 1, Text: "one"}, {ID: 2, Text: "two"}, {ID: 3, Text: "three"}}
	responses := []models.Response{
		{ID: 10, ItemID: 1, Response: models.AnswerYes, ResponderEmail: "owner@acme.test"},
		{ID: 11, ItemID: 2, Response: models.AnswerNo, ResponderEmail: "colleague@acme.test"},
	}

	rows := detailRows(u, items, responses)
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].Response)
	assert.Equal(t, models.ID(10), rows[0].Response.ID)
	assert.False(t, rows[0].OtherResponder)

	require.NotNil(t, rows[1].Response)
	assert.Equal(t, models.ID(11), rows[1].Response.ID)
	assert.True(t, rows[1].OtherResponder)

	assert.Nil(t, rows[2].Response)
}

func TestWithServerMessage(t *testing.T) {
	assert.Equal(t, "Failed to delete company", withServerMessage(assert.AnError, "Failed to delete company"))
}
