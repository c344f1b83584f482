package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
)

// clientRepository implements the ClientRepository interface
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository instance
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create creates a new client in the database
func (r *clientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// GetByID retrieves a client together with their budget plans
func (r *clientRepository) GetByID(id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.Preload("Plans", func(db *gorm.DB) *gorm.DB {
		return db.Order("budget_plans.start_date DESC")
	}).First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByUUID retrieves a client by their public UUID, plans included
func (r *clientRepository) GetByUUID(uuid string) (*models.Client, error) {
	var client models.Client
	err := r.db.Preload("Plans", func(db *gorm.DB) *gorm.DB {
		return db.Order("budget_plans.start_date DESC")
	}).Where("uuid = ?", uuid).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByNDISNumber retrieves a client by their NDIS participant number
func (r *clientRepository) GetByNDISNumber(number string) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("ndis_number = ?", strings.TrimSpace(number)).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByUserID retrieves all clients managed by a staff member
func (r *clientRepository) GetByUserID(userID uint, includeArchived bool) ([]models.Client, error) {
	var clients []models.Client
	query := r.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	err := query.Order("last_name ASC, first_name ASC").Find(&clients).Error
	return clients, err
}

// Update updates an existing client in the database
func (r *clientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// Archive marks a client as archived without deleting any records
func (r *clientRepository) Archive(id uint) error {
	return r.db.Model(&models.Client{}).Where("id = ?", id).
		Update("is_archived", true).Error
}

// Delete soft deletes a client by their ID
func (r *clientRepository) Delete(id uint) error {
	return r.db.Delete(&models.Client{}, id).Error
}

// List retrieves a paginated list of clients
func (r *clientRepository) List(offset, limit int) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&clients).Error
	return clients, err
}

// Count returns the total number of clients
func (r *clientRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Client{}).Count(&count).Error
	return count, err
}

// Search searches for clients by name or NDIS number
func (r *clientRepository) Search(query string) ([]models.Client, error) {
	var clients []models.Client
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("first_name LIKE ? OR last_name LIKE ? OR ndis_number LIKE ?",
		searchPattern, searchPattern, searchPattern).Find(&clients).Error
	return clients, err
}
