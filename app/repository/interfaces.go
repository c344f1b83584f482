package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	GetCaseloadByUserID(userID uint) (*UserCaseload, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetWithCaseload(offset, limit int) ([]UserWithCaseload, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ClientRepository defines the interface for client-related database operations
type ClientRepository interface {
	Create(client *models.Client) error
	GetByID(id uint) (*models.Client, error)
	GetByUUID(uuid string) (*models.Client, error)
	GetByNDISNumber(number string) (*models.Client, error)
	GetByUserID(userID uint, includeArchived bool) ([]models.Client, error)
	Update(client *models.Client) error
	Archive(id uint) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Client, error)
	Count() (int64, error)
	Search(query string) ([]models.Client, error)
}

// BudgetPlanRepository defines the interface for budget plan operations
type BudgetPlanRepository interface {
	Create(plan *models.BudgetPlan) error
	GetByID(id uint) (*models.BudgetPlan, error)
	GetByUUID(uuid string) (*models.BudgetPlan, error)
	GetByIDWithLineItems(id uint) (*models.BudgetPlan, error)
	GetByClientID(clientID uint) ([]models.BudgetPlan, error)
	GetActiveByClientID(clientID uint) (*models.BudgetPlan, error)
	SetActive(clientID, planID uint) error
	Update(plan *models.BudgetPlan) error
	Delete(id uint) error
	Count() (int64, error)
	CountActive() (int64, error)
	SumAllocated(planID uint) (decimal.Decimal, error)
	GetExpiring(now time.Time, window time.Duration) ([]models.BudgetPlan, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// LineItemRepository defines the interface for budget line item operations
type LineItemRepository interface {
	Create(item *models.BudgetLineItem) error
	GetByID(id uint) (*models.BudgetLineItem, error)
	GetByPlanID(planID uint) ([]models.BudgetLineItem, error)
	Update(item *models.BudgetLineItem) error
	Delete(id uint) error
	CountByPlanID(planID uint) (int64, error)
}

// CatalogRepository defines the interface for support catalog operations
type CatalogRepository interface {
	Create(item *models.CatalogItem) error
	GetByID(id uint) (*models.CatalogItem, error)
	GetByCode(code string) (*models.CatalogItem, error)
	GetActive() ([]models.CatalogItem, error)
	List(offset, limit int) ([]models.CatalogItem, error)
	Search(query, category string) ([]models.CatalogItem, error)
	Update(item *models.CatalogItem) error
	Deactivate(id uint) error
	Count() (int64, error)
	InvalidateCache() error
}

// CacheRepository defines the interface for cache inspection operations
type CacheRepository interface {
	GetAllKeys() ([]string, error)
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	DeleteKey(key string) (int64, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// UserWithCaseload represents a staff member with caseload counters
type UserWithCaseload struct {
	User            models.User
	ClientCount     int64
	PlanCount       int64
	ActivePlanCount int64
}

// UserCaseload provides aggregated counts for a single staff member.
type UserCaseload struct {
	ClientCount     int64
	PlanCount       int64
	ActivePlanCount int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Client     ClientRepository
	BudgetPlan BudgetPlanRepository
	LineItem   LineItemRepository
	Catalog    CatalogRepository
	Cache      CacheRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Client:     NewClientRepository(db),
		BudgetPlan: NewBudgetPlanRepository(db),
		LineItem:   NewLineItemRepository(db),
		Catalog:    NewCatalogRepository(db),
		Cache:      NewCacheRepository(),
	}
}
