package repository

import (
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
)

// lineItemRepository implements the LineItemRepository interface
type lineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository creates a new line item repository instance
func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &lineItemRepository{db: db}
}

// Create creates a new line item in the database
func (r *lineItemRepository) Create(item *models.BudgetLineItem) error {
	return r.db.Create(item).Error
}

// GetByID retrieves a line item by its ID
func (r *lineItemRepository) GetByID(id uint) (*models.BudgetLineItem, error) {
	var item models.BudgetLineItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByPlanID retrieves all line items of a plan ordered by creation
func (r *lineItemRepository) GetByPlanID(planID uint) ([]models.BudgetLineItem, error) {
	var items []models.BudgetLineItem
	err := r.db.Where("plan_id = ?", planID).
		Order("created_at ASC").Find(&items).Error
	return items, err
}

// Update updates an existing line item in the database
func (r *lineItemRepository) Update(item *models.BudgetLineItem) error {
	return r.db.Save(item).Error
}

// Delete soft deletes a line item by its ID
func (r *lineItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.BudgetLineItem{}, id).Error
}

// CountByPlanID returns the number of line items in a plan
func (r *lineItemRepository) CountByPlanID(planID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.BudgetLineItem{}).Where("plan_id = ?", planID).Count(&count).Error
	return count, err
}
