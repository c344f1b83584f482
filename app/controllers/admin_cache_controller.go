package controllers

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/OliverBrennan/PlanLedger/app/repository"
)

// AdminCacheController handles cache inspection requests using repository pattern
type AdminCacheController struct {
	cacheRepo repository.CacheRepository
}

// NewAdminCacheController creates a new admin cache controller with repository
func NewAdminCacheController(cacheRepo repository.CacheRepository) *AdminCacheController {
	return &AdminCacheController{
		cacheRepo: cacheRepo,
	}
}

// cacheEntry describes one Redis key for the admin cache monitor.
type cacheEntry struct {
	Key   string        `json:"key"`
	Value string        `json:"value"`
	Type  string        `json:"type"`
	TTL   time.Duration `json:"ttl"`
	Size  int64         `json:"size"`
}

// HandleCacheData lists the cache contents grouped by key type.
func (acc *AdminCacheController) HandleCacheData(c *fiber.Ctx) error {
	entries, err := acc.getCacheEntries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "Failed to read cache entries",
		})
	}

	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// HandleCacheDelete deletes a specific cache entry.
func (acc *AdminCacheController) HandleCacheDelete(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "key is required"})
	}

	result, err := acc.cacheRepo.DeleteKey(key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete key"})
	}

	if result == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Entry not found"})
	}

	return c.JSON(fiber.Map{"deleted": result})
}

// HandleCacheBulkDelete deletes every key matching the given patterns.
func (acc *AdminCacheController) HandleCacheBulkDelete(c *fiber.Ctx) error {
	var req struct {
		Patterns []string `json:"patterns"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Patterns) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "patterns are required"})
	}

	keys, err := acc.cacheRepo.FindKeysByPatterns(req.Patterns)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to scan keys"})
	}

	deleted, err := acc.cacheRepo.DeleteKeys(keys)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete keys"})
	}

	return c.JSON(fiber.Map{"matched": len(keys), "deleted": deleted})
}

// getCacheEntries retrieves all cache keys with their metadata.
func (acc *AdminCacheController) getCacheEntries() ([]cacheEntry, error) {
	keys, err := acc.cacheRepo.GetAllKeys()
	if err != nil {
		return nil, err
	}

	entries := make([]cacheEntry, 0, len(keys))

	for _, key := range keys {
		value, err := acc.cacheRepo.GetValue(key)
		if err != nil && err != redis.Nil {
			// Skip this key if there's an error other than key not found
			continue
		}

		ttl, err := acc.cacheRepo.GetTTL(key)
		if err != nil {
			ttl = -1
		}

		entries = append(entries, cacheEntry{
			Key:   key,
			Value: value,
			Type:  classifyCacheKey(key),
			TTL:   ttl,
			Size:  int64(len(value)),
		})
	}

	// Sort by type and then by key for a stable listing
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type < entries[j].Type
		}
		return entries[i].Key < entries[j].Key
	})

	return entries, nil
}

// classifyCacheKey maps a Redis key onto the cache areas the service
// writes: statistics counters, the catalog cache, plan view counters
// and session data.
func classifyCacheKey(key string) string {
	switch {
	case strings.HasPrefix(key, "statistics:"):
		return "statistics"
	case strings.HasPrefix(key, "catalog:"):
		return "catalog"
	case strings.HasPrefix(key, "plan:counters:"):
		return "counter"
	case strings.HasPrefix(key, "session:"):
		return "session"
	default:
		return "unknown"
	}
}

// ============================================================================
// GLOBAL ADMIN CACHE CONTROLLER INSTANCE - Singleton Pattern
// ============================================================================

var adminCacheController *AdminCacheController

// InitializeAdminCacheController initializes the global admin cache controller
func InitializeAdminCacheController() {
	cacheRepo := repository.GetGlobalFactory().GetCacheRepository()
	adminCacheController = NewAdminCacheController(cacheRepo)
}

// GetAdminCacheController returns the global admin cache controller instance
func GetAdminCacheController() *AdminCacheController {
	if adminCacheController == nil {
		InitializeAdminCacheController()
	}
	return adminCacheController
}
