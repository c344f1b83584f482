package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func testPlan(t *testing.T) *BudgetPlan {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	return &BudgetPlan{
		ClientID:       1,
		Title:          "Core Supports 2026",
		TotalAvailable: dec(t, "375.00"),
		StartDate:      &start,
		EndDate:        &end,
	}
}

func TestBudgetPlanValidate(t *testing.T) {
	p := testPlan(t)
	require.NoError(t, p.Validate())

	// Title and dates are optional.
	p = &BudgetPlan{ClientID: 1, TotalAvailable: dec(t, "100.00")}
	require.NoError(t, p.Validate())

	p = testPlan(t)
	p.TotalAvailable = dec(t, "-0.01")
	assert.ErrorIs(t, p.Validate(), ErrNegativeAmount)

	p = testPlan(t)
	inverted := p.StartDate.AddDate(0, 0, -1)
	p.EndDate = &inverted
	assert.ErrorIs(t, p.Validate(), ErrPlanDatesInverted)

	p = testPlan(t)
	p.Title = strings.Repeat("x", 256)
	assert.Error(t, p.Validate())
}

func TestBudgetPlanAllocatedTotal(t *testing.T) {
	p := testPlan(t)
	assert.True(t, p.AllocatedTotal().IsZero())
	assert.Equal(t, "375.00", p.Remaining().StringFixed(2))

	p.LineItems = []BudgetLineItem{
		{UnitPrice: dec(t, "100.00"), Quantity: 3},
		{UnitPrice: dec(t, "50.00"), Quantity: 1},
	}
	assert.Equal(t, "350.00", p.AllocatedTotal().StringFixed(2))
	assert.Equal(t, "25.00", p.Remaining().StringFixed(2))
}

func TestBudgetPlanExpiry(t *testing.T) {
	now := time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)

	p := testPlan(t)
	assert.False(t, p.IsExpired(now))
	assert.False(t, p.ExpiresWithin(now, 30*24*time.Hour))

	soon := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	p.EndDate = &soon
	assert.False(t, p.IsExpired(now))
	assert.True(t, p.ExpiresWithin(now, 30*24*time.Hour))

	past := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p.EndDate = &past
	assert.True(t, p.IsExpired(now))
	assert.False(t, p.ExpiresWithin(now, 30*24*time.Hour))

	p.EndDate = nil
	assert.False(t, p.IsExpired(now))
	assert.False(t, p.ExpiresWithin(now, 30*24*time.Hour))
}
