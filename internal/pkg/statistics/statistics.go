package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/cache"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/database"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/env"
)

const (
	CacheKeyClients         = "statistics:clients:total"
	CacheKeyPlans           = "statistics:plans:total"
	CacheKeyActivePlans     = "statistics:plans:active"
	CacheKeyExpiringPlans   = "statistics:plans:expiring"
	CacheKeyOverBudgetPlans = "statistics:plans:overbudget"
	CacheKeyUsers           = "statistics:users:total"
	CacheExpiration         = 30 * time.Minute
)

// overBudgetCondition matches plans whose line items sum to more than the
// available funds. The subquery must exclude soft-deleted line items itself;
// only the outer query gets that for free.
const overBudgetCondition = "total_available < (SELECT COALESCE(SUM(quantity * unit_price), 0) FROM budget_line_items WHERE budget_line_items.plan_id = budget_plans.id AND budget_line_items.deleted_at IS NULL)"

// StatisticsData holds the practice-wide counters for the admin dashboard
type StatisticsData struct {
	TotalClients    int
	TotalPlans      int
	ActivePlans     int
	ExpiringPlans   int
	OverBudgetPlans int
	TotalUsers      int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ExpiryWindow returns the notification window for expiring plans
func ExpiryWindow() time.Duration {
	days := 30
	if v, err := strconv.Atoi(env.GetEnv("PLAN_EXPIRY_WINDOW_DAYS", "")); err == nil && v > 0 {
		days = v
	}
	return time.Duration(days) * 24 * time.Hour
}

// ShouldUpdateCache checks whether the cache refresh interval has elapsed
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the statistics cache when it is due
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Failed to refresh statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recounts all statistics and stores them in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalClients int64
	if err := db.Model(&models.Client{}).Count(&totalClients).Error; err != nil {
		log.Printf("Error counting clients: %v", err)
		return err
	}

	var totalPlans int64
	if err := db.Model(&models.BudgetPlan{}).Count(&totalPlans).Error; err != nil {
		log.Printf("Error counting plans: %v", err)
		return err
	}

	var activePlans int64
	if err := db.Model(&models.BudgetPlan{}).Where("is_active = ?", true).Count(&activePlans).Error; err != nil {
		log.Printf("Error counting active plans: %v", err)
		return err
	}

	now := time.Now()
	cutoff := now.Add(ExpiryWindow())
	var expiringPlans int64
	if err := db.Model(&models.BudgetPlan{}).
		Where("is_active = ? AND end_date >= ? AND end_date < ?", true, now.Truncate(24*time.Hour), cutoff).
		Count(&expiringPlans).Error; err != nil {
		log.Printf("Error counting expiring plans: %v", err)
		return err
	}

	var overBudgetPlans int64
	if err := db.Model(&models.BudgetPlan{}).Where(overBudgetCondition).Count(&overBudgetPlans).Error; err != nil {
		log.Printf("Error counting over-budget plans: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting users: %v", err)
		return err
	}

	counters := map[string]int64{
		CacheKeyClients:         totalClients,
		CacheKeyPlans:           totalPlans,
		CacheKeyActivePlans:     activePlans,
		CacheKeyExpiringPlans:   expiringPlans,
		CacheKeyOverBudgetPlans: overBudgetPlans,
		CacheKeyUsers:           totalUsers,
	}
	for key, value := range counters {
		if err := cache.Set(key, strconv.FormatInt(value, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", key, err)
			return err
		}
	}

	log.Printf("Statistics updated in cache: clients=%d plans=%d active=%d expiring=%d overbudget=%d users=%d",
		totalClients, totalPlans, activePlans, expiringPlans, overBudgetPlans, totalUsers)

	return nil
}

// cachedCount reads a counter from cache, recounting through the supplied
// query on a miss.
func cachedCount(key string, count func() (int64, error)) int {
	val, err := cache.Get(key)
	if err == nil {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return int(parsed)
		}
	}

	fresh, err := count()
	if err != nil {
		log.Printf("Error counting for %s: %v", key, err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(fresh, 10), CacheExpiration); err != nil {
		log.Printf("Error caching %s: %v", key, err)
	}
	return int(fresh)
}

// GetTotalClients returns the number of clients from cache or database
func GetTotalClients() int {
	return cachedCount(CacheKeyClients, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.Client{}).Count(&count).Error
		return count, err
	})
}

// GetTotalPlans returns the number of budget plans from cache or database
func GetTotalPlans() int {
	return cachedCount(CacheKeyPlans, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.BudgetPlan{}).Count(&count).Error
		return count, err
	})
}

// GetActivePlans returns the number of active plans from cache or database
func GetActivePlans() int {
	return cachedCount(CacheKeyActivePlans, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.BudgetPlan{}).Where("is_active = ?", true).Count(&count).Error
		return count, err
	})
}

// GetExpiringPlans returns the number of active plans ending inside the
// notification window
func GetExpiringPlans() int {
	return cachedCount(CacheKeyExpiringPlans, func() (int64, error) {
		now := time.Now()
		cutoff := now.Add(ExpiryWindow())
		var count int64
		err := database.GetDB().Model(&models.BudgetPlan{}).
			Where("is_active = ? AND end_date >= ? AND end_date < ?", true, now.Truncate(24*time.Hour), cutoff).
			Count(&count).Error
		return count, err
	})
}

// GetOverBudgetPlans returns the number of plans whose allocations exceed
// their available funds
func GetOverBudgetPlans() int {
	return cachedCount(CacheKeyOverBudgetPlans, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.BudgetPlan{}).Where(overBudgetCondition).Count(&count).Error
		return count, err
	})
}

// GetTotalUsers returns the number of staff accounts from cache or database
func GetTotalUsers() int {
	return cachedCount(CacheKeyUsers, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalClients:    GetTotalClients(),
		TotalPlans:      GetTotalPlans(),
		ActivePlans:     GetActivePlans(),
		ExpiringPlans:   GetExpiringPlans(),
		OverBudgetPlans: GetOverBudgetPlans(),
		TotalUsers:      GetTotalUsers(),
	}
}
