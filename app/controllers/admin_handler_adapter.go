package controllers

import (
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/gofiber/fiber/v2"
)

// Global admin controller instance
var adminController *AdminController

// InitializeAdminController initializes the global admin controller with repositories
func InitializeAdminController() {
	repos := repository.GetGlobalRepositories()
	adminController = NewAdminController(repos)
}

// GetAdminController returns the global admin controller instance
func GetAdminController() *AdminController {
	if adminController == nil {
		InitializeAdminController()
	}
	return adminController
}

// Adapter functions to maintain compatibility with existing router

// HandleAdminStats - Adapter for the dashboard statistics
func HandleAdminStats(c *fiber.Ctx) error {
	return GetAdminController().HandleStats(c)
}

// HandleAdminUsers - Adapter for user management
func HandleAdminUsers(c *fiber.Ctx) error {
	return GetAdminController().HandleUsers(c)
}

// HandleAdminCreateUser - Adapter for practitioner creation
func HandleAdminCreateUser(c *fiber.Ctx) error {
	return GetAdminController().HandleCreateUser(c)
}

// HandleAdminUserUpdate - Adapter for user update
func HandleAdminUserUpdate(c *fiber.Ctx) error {
	return GetAdminController().HandleUserUpdate(c)
}

// HandleAdminUserDelete - Adapter for user delete
func HandleAdminUserDelete(c *fiber.Ctx) error {
	return GetAdminController().HandleUserDelete(c)
}

// HandleAdminResendActivation - Adapter for resend activation
func HandleAdminResendActivation(c *fiber.Ctx) error {
	return GetAdminController().HandleResendActivation(c)
}

// HandleAdminNotifyExpiring - Adapter for the expiry mail pass
func HandleAdminNotifyExpiring(c *fiber.Ctx) error {
	return GetAdminController().HandleNotifyExpiring(c)
}

// Cache Monitor - Repository Pattern Functions using dedicated AdminCacheController

// HandleAdminCacheData - Adapter for cache data API
func HandleAdminCacheData(c *fiber.Ctx) error {
	return GetAdminCacheController().HandleCacheData(c)
}

// HandleAdminCacheDelete - Adapter for cache entry deletion
func HandleAdminCacheDelete(c *fiber.Ctx) error {
	return GetAdminCacheController().HandleCacheDelete(c)
}

// HandleAdminCacheBulkDelete - Adapter for bulk cache deletion
func HandleAdminCacheBulkDelete(c *fiber.Ctx) error {
	return GetAdminCacheController().HandleCacheBulkDelete(c)
}
