package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLineItem(t *testing.T) *BudgetLineItem {
	t.Helper()
	return &BudgetLineItem{
		PlanID:       1,
		Code:         "15_056_0128_1_3",
		Description:  "Occupational therapy session",
		Category:     CategoryCore,
		UnitPrice:    dec(t, "193.99"),
		Quantity:     5,
		UsedQuantity: 3,
	}
}

func TestBudgetLineItemValidate(t *testing.T) {
	li := testLineItem(t)
	require.NoError(t, li.Validate())

	li.UnitPrice = dec(t, "-1.00")
	assert.ErrorIs(t, li.Validate(), ErrNegativeAmount)

	// UsedQuantity above Quantity is inconsistent data.
	li = testLineItem(t)
	li.UsedQuantity = li.Quantity + 1
	assert.Error(t, li.Validate())

	li = testLineItem(t)
	li.Quantity = -1
	assert.Error(t, li.Validate())

	li = testLineItem(t)
	li.Category = "transport"
	assert.Error(t, li.Validate())
}

func TestBudgetLineItemTotals(t *testing.T) {
	li := testLineItem(t)
	assert.Equal(t, "969.95", li.LineTotal().StringFixed(2))
	assert.Equal(t, 2, li.BalanceQuantity())
}

func TestBudgetLineItemCanReduceQuantityTo(t *testing.T) {
	li := testLineItem(t)
	assert.False(t, li.CanReduceQuantityTo(2))
	assert.True(t, li.CanReduceQuantityTo(3))
	assert.True(t, li.CanReduceQuantityTo(4))
}

func TestCatalogItemPriceCap(t *testing.T) {
	ci := &CatalogItem{
		Code:     "15_056_0128_1_3",
		Name:     "Occupational Therapy",
		Category: CategoryCore,
		Unit:     UnitHour,
		PriceCap: dec(t, "193.99"),
		IsActive: true,
	}
	require.NoError(t, ci.Validate())

	assert.False(t, ci.ExceedsPriceCap(dec(t, "193.99")))
	assert.True(t, ci.ExceedsPriceCap(dec(t, "194.00")))

	ci.PriceCap = dec(t, "0.00")
	assert.False(t, ci.ExceedsPriceCap(dec(t, "999.00")), "zero cap means uncapped")
}
