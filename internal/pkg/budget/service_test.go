package budget

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/allocation"
)

type fakePlans struct {
	repository.BudgetPlanRepository
	plan  *models.BudgetPlan
	items *fakeItems
}

func (f *fakePlans) GetByIDWithLineItems(id uint) (*models.BudgetPlan, error) {
	if f.plan == nil || id != f.plan.ID {
		return nil, gorm.ErrRecordNotFound
	}
	p := *f.plan
	p.LineItems = f.items.byPlan(p.ID)
	return &p, nil
}

type fakeItems struct {
	repository.LineItemRepository
	items  []models.BudgetLineItem
	nextID uint
}

func (f *fakeItems) Create(item *models.BudgetLineItem) error {
	f.nextID++
	item.ID = f.nextID
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeItems) GetByID(id uint) (*models.BudgetLineItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItems) Update(item *models.BudgetLineItem) error {
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeItems) Delete(id uint) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeItems) byPlan(planID uint) []models.BudgetLineItem {
	var out []models.BudgetLineItem
	for _, item := range f.items {
		if item.PlanID == planID {
			out = append(out, item)
		}
	}
	return out
}

type fakeCatalog struct {
	repository.CatalogRepository
	byID map[uint]models.CatalogItem
}

func (f *fakeCatalog) GetByID(id uint) (*models.CatalogItem, error) {
	if item, ok := f.byID[id]; ok {
		return &item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

const (
	testPlanID   = uint(12)
	testClientID = uint(3)
	testUserID   = uint(7)
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestService(t *testing.T, available string, seed ...models.BudgetLineItem) (*Service, *fakePlans, *fakeItems) {
	t.Helper()

	items := &fakeItems{}
	for _, item := range seed {
		require.NoError(t, items.Create(&item))
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	plans := &fakePlans{
		plan: &models.BudgetPlan{
			ID:             testPlanID,
			ClientID:       testClientID,
			Title:          "Core Supports 2026",
			TotalAvailable: mustDec(t, available),
			StartDate:      &start,
			EndDate:        &end,
			IsActive:       true,
		},
		items: items,
	}
	catalog := &fakeCatalog{byID: map[uint]models.CatalogItem{
		40: {
			ID:       40,
			Code:     "15_056_0128_1_3",
			Name:     "Occupational Therapy",
			Category: models.CategoryCore,
			Unit:     models.UnitHour,
			PriceCap: mustDec(t, "193.99"),
			IsActive: true,
		},
	}}

	cfg := Config{
		Alloc:       allocation.DefaultConfig(),
		TokenSecret: "service-test-secret",
		TokenTTL:    time.Minute,
	}
	return NewService(plans, items, catalog, cfg), plans, items
}

func seedLine(t *testing.T, price string, qty, used int) models.BudgetLineItem {
	t.Helper()
	return models.BudgetLineItem{
		PlanID:       testPlanID,
		Code:         "15_045_0128_1_3",
		Description:  "Physiotherapy session",
		Category:     models.CategoryCore,
		UnitPrice:    mustDec(t, price),
		Quantity:     qty,
		UsedQuantity: used,
	}
}

func TestStageLineChangeCommitsOnExactMatch(t *testing.T) {
	svc, _, items := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))

	res, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, ChangeInput{
		Action:      ActionAdd,
		Code:        "15_056_0128_1_3",
		Description: "OT assessment",
		UnitPrice:   mustDec(t, "75.00"),
		Quantity:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, allocation.DecisionProceed, res.Decision)
	assert.True(t, res.Committed)
	assert.Empty(t, res.ConfirmToken)
	require.NotNil(t, res.LineItem)
	assert.NotZero(t, res.LineItem.ID)
	assert.Len(t, items.byPlan(testPlanID), 2)
	assert.Equal(t, allocation.StatusFullyAllocated, res.Summary.Status)
	assert.Equal(t, "0.00", res.Summary.Remaining.StringFixed(2))
}

func TestStageLineChangeUnderBudgetNeedsConfirmation(t *testing.T) {
	svc, _, items := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))

	in := ChangeInput{
		Action:      ActionAdd,
		Code:        "15_056_0128_1_3",
		Description: "OT assessment",
		UnitPrice:   mustDec(t, "50.00"),
		Quantity:    1,
	}
	res, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, in)
	require.NoError(t, err)

	assert.Equal(t, allocation.DecisionConfirmUnder, res.Decision)
	assert.False(t, res.Committed)
	assert.NotEmpty(t, res.ConfirmToken)
	assert.Equal(t, "-25.00", res.Delta.StringFixed(2))
	assert.Equal(t, "350.00", res.ProposedTotal.StringFixed(2))
	assert.Len(t, items.byPlan(testPlanID), 1, "nothing persisted before confirmation")
	require.NotNil(t, res.ProposedSummary)
	assert.Equal(t, "25.00", res.ProposedSummary.Remaining.StringFixed(2))

	commit, err := svc.CommitConfirmed(context.Background(), testUserID, testPlanID, res.ConfirmToken, in)
	require.NoError(t, err)
	assert.True(t, commit.Committed)
	assert.Len(t, items.byPlan(testPlanID), 2)
	assert.Equal(t, "25.00", commit.Summary.Remaining.StringFixed(2))
	assert.Equal(t, allocation.StatusCritical, commit.Summary.Status)
}

func TestStageLineChangeOverBudgetNeedsConfirmation(t *testing.T) {
	svc, _, _ := newTestService(t, "375.00", seedLine(t, "120.00", 3, 0))

	in := ChangeInput{
		Action:      ActionAdd,
		Code:        "15_056_0128_1_3",
		Description: "OT assessment",
		UnitPrice:   mustDec(t, "40.00"),
		Quantity:    1,
	}
	res, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, in)
	require.NoError(t, err)

	assert.Equal(t, allocation.DecisionConfirmOver, res.Decision)
	assert.Equal(t, "25.00", res.Delta.StringFixed(2))
	assert.Equal(t, "400.00", res.ProposedTotal.StringFixed(2))
	assert.Equal(t, allocation.StatusOverBudget, res.ProposedSummary.Status)

	commit, err := svc.CommitConfirmed(context.Background(), testUserID, testPlanID, res.ConfirmToken, in)
	require.NoError(t, err)
	assert.Equal(t, allocation.StatusOverBudget, commit.Summary.Status)
	assert.Equal(t, "-25.00", commit.Summary.Remaining.StringFixed(2))
}

func TestStageLineChangeQuantityFloor(t *testing.T) {
	svc, _, items := newTestService(t, "600.00", seedLine(t, "80.00", 5, 3))
	seeded := items.byPlan(testPlanID)[0]

	_, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, ChangeInput{
		Action:     ActionUpdate,
		LineItemID: seeded.ID,
		Quantity:   2,
	})

	var floorErr *allocation.QuantityFloorError
	require.ErrorAs(t, err, &floorErr)
	assert.Equal(t, 3, floorErr.Used)
	assert.Equal(t, 5, items.byPlan(testPlanID)[0].Quantity, "nothing persisted")
}

func TestCommitConfirmedRejectsForeignToken(t *testing.T) {
	svc, _, _ := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))

	in := ChangeInput{
		Action: ActionAdd, Code: "x", Description: "session",
		UnitPrice: mustDec(t, "50.00"), Quantity: 1,
	}
	res, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, in)
	require.NoError(t, err)
	require.False(t, res.Committed)

	// Different user.
	_, err = svc.CommitConfirmed(context.Background(), testUserID+1, testPlanID, res.ConfirmToken, in)
	assert.ErrorIs(t, err, ErrConfirmTokenMismatch)

	// Different change payload.
	altered := in
	altered.Quantity = 2
	_, err = svc.CommitConfirmed(context.Background(), testUserID, testPlanID, res.ConfirmToken, altered)
	assert.ErrorIs(t, err, ErrConfirmTokenMismatch)

	// Garbage token.
	_, err = svc.CommitConfirmed(context.Background(), testUserID, testPlanID, "junk", in)
	assert.ErrorIs(t, err, ErrConfirmTokenMismatch)
}

func TestCommitConfirmedDetectsDrift(t *testing.T) {
	svc, _, items := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))

	in := ChangeInput{
		Action: ActionAdd, Code: "x", Description: "session",
		UnitPrice: mustDec(t, "50.00"), Quantity: 1,
	}
	res, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, in)
	require.NoError(t, err)

	// Someone else edits the plan while the confirmation dialog is open.
	other := seedLine(t, "10.00", 1, 0)
	require.NoError(t, items.Create(&other))

	_, err = svc.CommitConfirmed(context.Background(), testUserID, testPlanID, res.ConfirmToken, in)
	assert.ErrorIs(t, err, ErrStaleConfirmation)
}

func TestDeleteLineItem(t *testing.T) {
	svc, _, items := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))
	seeded := items.byPlan(testPlanID)[0]

	_, err := svc.DeleteLineItem(context.Background(), testPlanID, seeded.ID, "DELETE")
	assert.ErrorIs(t, err, ErrConfirmTextMismatch)
	assert.Len(t, items.byPlan(testPlanID), 1)

	res, err := svc.DeleteLineItem(context.Background(), testPlanID, seeded.ID, "delete")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, "-375.00", res.Delta.StringFixed(2))
	assert.Empty(t, items.byPlan(testPlanID))
	assert.Equal(t, 0, res.Summary.LineItemCount)
}

func TestDeleteLineItemUnknownLine(t *testing.T) {
	svc, _, _ := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))

	_, err := svc.DeleteLineItem(context.Background(), testPlanID, 999, "delete")
	assert.ErrorIs(t, err, ErrLineNotInPlan)
}

func TestRecordUsage(t *testing.T) {
	svc, _, items := newTestService(t, "600.00", seedLine(t, "80.00", 5, 3))
	seeded := items.byPlan(testPlanID)[0]

	res, err := svc.RecordUsage(context.Background(), testPlanID, seeded.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, res.LineItem.UsedQuantity)
	assert.Equal(t, 1, res.BalanceQuantity)
	assert.False(t, res.Exhausted)

	res, err = svc.RecordUsage(context.Background(), testPlanID, seeded.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)

	_, err = svc.RecordUsage(context.Background(), testPlanID, seeded.ID, 1)
	assert.ErrorIs(t, err, ErrUsageExceedsQuantity)
}

func TestRecordUsageWrongPlan(t *testing.T) {
	svc, _, items := newTestService(t, "600.00", seedLine(t, "80.00", 5, 0))
	seeded := items.byPlan(testPlanID)[0]

	_, err := svc.RecordUsage(context.Background(), testPlanID+1, seeded.ID, 1)
	assert.ErrorIs(t, err, ErrLineNotInPlan)
}

func TestStageLineChangeCatalogAdd(t *testing.T) {
	svc, _, _ := newTestService(t, "375.00")

	catalogID := uint(40)
	in := ChangeInput{
		Action:        ActionAdd,
		CatalogItemID: &catalogID,
		UnitPrice:     mustDec(t, "200.00"),
		Quantity:      1,
	}
	_, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, in)
	assert.ErrorIs(t, err, ErrPriceAboveCap)

	in.UnitPrice = mustDec(t, "187.50")
	in.Quantity = 2
	res, err := svc.StageLineChange(context.Background(), testUserID, testPlanID, in)
	require.NoError(t, err)

	// Code, category and description come from the catalog entry.
	require.True(t, res.Committed)
	assert.Equal(t, "15_056_0128_1_3", res.LineItem.Code)
	assert.Equal(t, models.CategoryCore, res.LineItem.Category)
	assert.Equal(t, "Occupational Therapy", res.LineItem.Description)
}

func TestPreviewNeverCommits(t *testing.T) {
	svc, _, items := newTestService(t, "375.00", seedLine(t, "100.00", 3, 0))

	res, err := svc.Preview(context.Background(), testPlanID, ChangeInput{
		Action: ActionAdd, Code: "x", Description: "session",
		UnitPrice: mustDec(t, "75.00"), Quantity: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, allocation.DecisionProceed, res.Decision)
	assert.False(t, res.Committed)
	assert.Empty(t, res.ConfirmToken)
	assert.Len(t, items.byPlan(testPlanID), 1)
	assert.Equal(t, allocation.StatusFullyAllocated, res.ProposedSummary.Status)
}

func TestSummaryUnknownPlan(t *testing.T) {
	svc, _, _ := newTestService(t, "375.00")

	_, err := svc.Summary(context.Background(), testPlanID+5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
