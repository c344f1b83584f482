package repository

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByActivationToken retrieves a user by their activation token
func (r *userRepository) GetByActivationToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("activation_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and user settings.
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var settings models.UserSettings
	query := r.db.Where("api_key_hash = ? AND api_key_hash <> '' AND api_key_revoked_at IS NULL", trimmed)
	if err := query.First(&settings).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := r.db.First(&user, settings.UserID).Error; err != nil {
		return nil, nil, err
	}
	return &user, &settings, nil
}

// GetCaseloadByUserID returns aggregate caseload counts for the given user.
func (r *userRepository) GetCaseloadByUserID(userID uint) (*UserCaseload, error) {
	return r.getCaseload(userID)
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Search searches for users by name or email
func (r *userRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR email LIKE ?", searchPattern, searchPattern).Find(&users).Error
	return users, err
}

// GetWithCaseload retrieves users together with their caseload counters
func (r *userRepository) GetWithCaseload(offset, limit int) ([]UserWithCaseload, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	var usersWithCaseload []UserWithCaseload
	for _, user := range users {
		caseload, err := r.getCaseload(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get caseload for user %d: %w", user.ID, err)
		}

		usersWithCaseload = append(usersWithCaseload, UserWithCaseload{
			User:            user,
			ClientCount:     caseload.ClientCount,
			PlanCount:       caseload.PlanCount,
			ActivePlanCount: caseload.ActivePlanCount,
		})
	}

	return usersWithCaseload, nil
}

// getCaseload counts clients and plans managed by a staff member
func (r *userRepository) getCaseload(userID uint) (*UserCaseload, error) {
	var caseload UserCaseload

	err := r.db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&caseload.ClientCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	err = r.db.Model(&models.BudgetPlan{}).
		Joins("JOIN clients ON clients.id = budget_plans.client_id").
		Where("clients.user_id = ?", userID).
		Count(&caseload.PlanCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count plans: %w", err)
	}

	err = r.db.Model(&models.BudgetPlan{}).
		Joins("JOIN clients ON clients.id = budget_plans.client_id").
		Where("clients.user_id = ? AND budget_plans.is_active = ?", userID, true).
		Count(&caseload.ActivePlanCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active plans: %w", err)
	}

	return &caseload, nil
}

// GetDailyStats returns daily user registration statistics for a date range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	// Use DATE_FORMAT for MySQL compatibility and proper date formatting
	err := r.db.Model(&models.User{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily user stats: %w", err)
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
