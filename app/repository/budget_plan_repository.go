package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
)

// budgetPlanRepository implements the BudgetPlanRepository interface
type budgetPlanRepository struct {
	db *gorm.DB
}

// NewBudgetPlanRepository creates a new budget plan repository instance
func NewBudgetPlanRepository(db *gorm.DB) BudgetPlanRepository {
	return &budgetPlanRepository{db: db}
}

// Create creates a new budget plan in the database
func (r *budgetPlanRepository) Create(plan *models.BudgetPlan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *budgetPlanRepository) GetByID(id uint) (*models.BudgetPlan, error) {
	var plan models.BudgetPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByUUID retrieves a plan by its public UUID
func (r *budgetPlanRepository) GetByUUID(uuid string) (*models.BudgetPlan, error) {
	var plan models.BudgetPlan
	err := r.db.Where("uuid = ?", uuid).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByIDWithLineItems retrieves a plan with its line items ordered by creation
func (r *budgetPlanRepository) GetByIDWithLineItems(id uint) (*models.BudgetPlan, error) {
	var plan models.BudgetPlan
	err := r.db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("budget_line_items.created_at ASC")
	}).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByClientID retrieves all plans belonging to a client
func (r *budgetPlanRepository) GetByClientID(clientID uint) ([]models.BudgetPlan, error) {
	var plans []models.BudgetPlan
	err := r.db.Where("client_id = ?", clientID).
		Order("start_date DESC").Find(&plans).Error
	return plans, err
}

// GetActiveByClientID retrieves the client's active plan
func (r *budgetPlanRepository) GetActiveByClientID(clientID uint) (*models.BudgetPlan, error) {
	var plan models.BudgetPlan
	err := r.db.Where("client_id = ? AND is_active = ?", clientID, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// SetActive activates the given plan and deactivates every other plan of
// the client inside one transaction, so readers never observe two active
// plans or none where one existed.
func (r *budgetPlanRepository) SetActive(clientID, planID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var plan models.BudgetPlan
		if err := tx.Where("id = ? AND client_id = ?", planID, clientID).First(&plan).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.BudgetPlan{}).
			Where("client_id = ? AND id <> ?", clientID, planID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate sibling plans: %w", err)
		}

		return tx.Model(&models.BudgetPlan{}).
			Where("id = ?", planID).
			Update("is_active", true).Error
	})
}

// Update updates an existing plan in the database
func (r *budgetPlanRepository) Update(plan *models.BudgetPlan) error {
	return r.db.Save(plan).Error
}

// Delete soft deletes a plan and its line items
func (r *budgetPlanRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&models.BudgetLineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BudgetPlan{}, id).Error
	})
}

// Count returns the total number of plans
func (r *budgetPlanRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.BudgetPlan{}).Count(&count).Error
	return count, err
}

// CountActive returns the number of currently active plans
func (r *budgetPlanRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.BudgetPlan{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// SumAllocated sums unit_price * quantity over the plan's line items
func (r *budgetPlanRepository) SumAllocated(planID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.BudgetLineItem{}).
		Where("plan_id = ?", planID).
		Select("COALESCE(SUM(unit_price * quantity), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum allocations for plan %d: %w", planID, err)
	}
	return total, nil
}

// GetExpiring returns plans whose funding period ends inside the window,
// with client and managing user preloaded for notifications.
func (r *budgetPlanRepository) GetExpiring(now time.Time, window time.Duration) ([]models.BudgetPlan, error) {
	var plans []models.BudgetPlan
	cutoff := now.Add(window)
	err := r.db.Preload("Client").Preload("Client.User").
		Where("is_active = ? AND end_date >= ? AND end_date < ?", true, now.Truncate(24*time.Hour), cutoff).
		Order("end_date ASC").
		Find(&plans).Error
	return plans, err
}

// GetDailyStats returns daily plan creation statistics for a date range
func (r *budgetPlanRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	err := r.db.Model(&models.BudgetPlan{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily plan stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return dailyStats, nil
}
