package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OliverBrennan/PlanLedger/app/models"
)

func TestFilterByOwner(t *testing.T) {
	clients := []models.Client{
		{ID: 1, UserID: 7, FirstName: "Ava"},
		{ID: 2, UserID: 9, FirstName: "Ben"},
		{ID: 3, UserID: 7, FirstName: "Caleb"},
	}

	owned := filterByOwner(clients, 7)
	assert.Len(t, owned, 2)
	assert.Equal(t, uint(1), owned[0].ID)
	assert.Equal(t, uint(3), owned[1].ID)

	assert.Empty(t, filterByOwner(clients, 4))
	assert.Empty(t, filterByOwner(nil, 7))
}
