package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/OliverBrennan/PlanLedger/internal/pkg/middleware"
)

// ServerInterface represents all handlers the v1 API serves.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error

	PostAuthRegister(c *fiber.Ctx) error
	GetAuthActivate(c *fiber.Ctx) error
	PostAuthLogin(c *fiber.Ctx) error
	PostAuthLogout(c *fiber.Ctx) error

	GetProfile(c *fiber.Ctx) error
	PostProfileAPIKey(c *fiber.Ctx) error
	DeleteProfileAPIKey(c *fiber.Ctx) error
	PatchProfileSettings(c *fiber.Ctx) error

	GetClients(c *fiber.Ctx) error
	PostClients(c *fiber.Ctx) error
	GetClient(c *fiber.Ctx) error
	PatchClient(c *fiber.Ctx) error
	PostClientArchive(c *fiber.Ctx) error

	GetCatalog(c *fiber.Ctx) error
	GetCatalogSearch(c *fiber.Ctx) error
	GetCatalogItem(c *fiber.Ctx) error

	PostPlans(c *fiber.Ctx) error
	GetPlan(c *fiber.Ctx) error
	PatchPlan(c *fiber.Ctx) error
	DeletePlan(c *fiber.Ctx) error
	PostPlanActivate(c *fiber.Ctx) error
	GetPlanSummary(c *fiber.Ctx) error
	GetPlanLineItems(c *fiber.Ctx) error
	PostPlanPreview(c *fiber.Ctx) error
	PostPlanLineItems(c *fiber.Ctx) error

	PatchLineItem(c *fiber.Ctx) error
	DeleteLineItem(c *fiber.Ctx) error
	PostLineItemUsage(c *fiber.Ctx) error

	GetIntegrationPlanSummary(c *fiber.Ctx) error
	PostIntegrationLineItemUsage(c *fiber.Ctx) error

	GetAdminStats(c *fiber.Ctx) error
	GetAdminUsers(c *fiber.Ctx) error
	PostAdminUsers(c *fiber.Ctx) error
	PatchAdminUser(c *fiber.Ctx) error
	DeleteAdminUser(c *fiber.Ctx) error
	PostAdminResendActivation(c *fiber.Ctx) error
	PostAdminNotifyExpiring(c *fiber.Ctx) error
	GetAdminCache(c *fiber.Ctx) error
	DeleteAdminCacheKey(c *fiber.Ctx) error
	PostAdminCacheBulkDelete(c *fiber.Ctx) error
}

// RegisterHandlers attaches every v1 route to the given router group. Open
// routes come first, then the session-protected resource groups, then the
// integration group guarded by API key auth and the admin group guarded by
// the admin check.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)

	auth := router.Group("/auth")
	auth.Post("/register", si.PostAuthRegister)
	auth.Get("/activate", si.GetAuthActivate)
	auth.Post("/login", si.PostAuthLogin)
	auth.Post("/logout", middleware.RequireAPISessionAuth, si.PostAuthLogout)

	profile := router.Group("/profile", middleware.RequireAPISessionAuth)
	profile.Get("/", si.GetProfile)
	profile.Post("/api-key", si.PostProfileAPIKey)
	profile.Delete("/api-key", si.DeleteProfileAPIKey)
	profile.Patch("/settings", si.PatchProfileSettings)

	clients := router.Group("/clients", middleware.RequireAPISessionAuth)
	clients.Get("/", si.GetClients)
	clients.Post("/", si.PostClients)
	clients.Get("/:uuid", si.GetClient)
	clients.Patch("/:uuid", si.PatchClient)
	clients.Post("/:uuid/archive", si.PostClientArchive)

	// /catalog/search must be registered before the :code wildcard.
	catalog := router.Group("/catalog", middleware.RequireAPISessionAuth)
	catalog.Get("/", si.GetCatalog)
	catalog.Get("/search", si.GetCatalogSearch)
	catalog.Get("/:code", si.GetCatalogItem)

	plans := router.Group("/plans", middleware.RequireAPISessionAuth)
	plans.Post("/", si.PostPlans)
	plans.Get("/:uuid", si.GetPlan)
	plans.Patch("/:uuid", si.PatchPlan)
	plans.Delete("/:uuid", si.DeletePlan)
	plans.Post("/:uuid/activate", si.PostPlanActivate)
	plans.Get("/:uuid/summary", si.GetPlanSummary)
	plans.Get("/:uuid/line-items", si.GetPlanLineItems)
	plans.Post("/:uuid/line-items", si.PostPlanLineItems)
	plans.Post("/:uuid/preview", si.PostPlanPreview)

	lineItems := router.Group("/line-items", middleware.RequireAPISessionAuth)
	lineItems.Patch("/:id", si.PatchLineItem)
	lineItems.Delete("/:id", si.DeleteLineItem)
	lineItems.Post("/:id/usage", si.PostLineItemUsage)

	integration := router.Group("/integration", middleware.APIKeyAuthMiddleware())
	integration.Get("/plans/:uuid/summary", si.GetIntegrationPlanSummary)
	integration.Post("/line-items/:id/usage", si.PostIntegrationLineItemUsage)

	admin := router.Group("/admin", middleware.RequireAPIAdmin)
	admin.Get("/stats", si.GetAdminStats)
	admin.Get("/users", si.GetAdminUsers)
	admin.Post("/users", si.PostAdminUsers)
	admin.Patch("/users/:id", si.PatchAdminUser)
	admin.Delete("/users/:id", si.DeleteAdminUser)
	admin.Post("/users/:id/resend-activation", si.PostAdminResendActivation)
	admin.Post("/notify-expiring", si.PostAdminNotifyExpiring)
	admin.Get("/cache", si.GetAdminCache)
	admin.Delete("/cache/:key", si.DeleteAdminCacheKey)
	admin.Post("/cache/bulk-delete", si.PostAdminCacheBulkDelete)
}
