package repository

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/cache"
)

const (
	catalogCacheKey = "catalog:active"
	catalogCacheTTL = 6 * time.Hour
)

// catalogRepository implements the CatalogRepository interface.
// The active catalog is read on nearly every line item form, so it is
// cached in Redis and invalidated on any catalog write.
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// Create creates a new catalog item in the database
func (r *catalogRepository) Create(item *models.CatalogItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return err
	}
	return r.InvalidateCache()
}

// GetByID retrieves a catalog item by its ID
func (r *catalogRepository) GetByID(id uint) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByCode retrieves a catalog item by its support item code
func (r *catalogRepository) GetByCode(code string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.db.Where("code = ?", strings.TrimSpace(code)).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetActive returns all active catalog items, served from cache when warm
func (r *catalogRepository) GetActive() ([]models.CatalogItem, error) {
	if cached, err := cache.Get(catalogCacheKey); err == nil && cached != "" {
		var items []models.CatalogItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
		// Corrupt cache entry, fall through to the database.
		_ = cache.Delete(catalogCacheKey)
	}

	var items []models.CatalogItem
	err := r.db.Where("is_active = ?", true).
		Order("category ASC, code ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := cache.Set(catalogCacheKey, payload, catalogCacheTTL); err != nil {
			log.Printf("failed to cache active catalog: %v", err)
		}
	}

	return items, nil
}

// List retrieves a paginated list of catalog items
func (r *catalogRepository) List(offset, limit int) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.db.Order("code ASC").Offset(offset).Limit(limit).Find(&items).Error
	return items, err
}

// Search searches catalog items by code or name, optionally per category
func (r *catalogRepository) Search(query, category string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	q := r.db.Where("code LIKE ? OR name LIKE ?", searchPattern, searchPattern)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("code ASC").Find(&items).Error
	return items, err
}

// Update updates an existing catalog item in the database
func (r *catalogRepository) Update(item *models.CatalogItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return err
	}
	return r.InvalidateCache()
}

// Deactivate retires a catalog item without removing it
func (r *catalogRepository) Deactivate(id uint) error {
	err := r.db.Model(&models.CatalogItem{}).Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return err
	}
	return r.InvalidateCache()
}

// Count returns the total number of catalog items
func (r *catalogRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CatalogItem{}).Count(&count).Error
	return count, err
}

// InvalidateCache drops the cached active catalog
func (r *catalogRepository) InvalidateCache() error {
	if err := cache.Delete(catalogCacheKey); err != nil {
		log.Printf("failed to invalidate catalog cache: %v", err)
		return err
	}
	return nil
}
