package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/OliverBrennan/PlanLedger/app/controllers"
)

// Pong is the reply of the ping endpoint.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements ServerInterface by delegating to the controller layer.
// Security is not enforced here; RegisterHandlers attaches the session, API
// key and admin middleware to the route groups.
type APIServer struct{}

func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing answers with a static pong so clients can probe the API version.
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.JSON(Pong{Ping: "pong"})
}

// --- Auth ---

func (s *APIServer) PostAuthRegister(c *fiber.Ctx) error {
	return controllers.HandleAuthRegister(c)
}

func (s *APIServer) GetAuthActivate(c *fiber.Ctx) error {
	return controllers.HandleAuthActivate(c)
}

func (s *APIServer) PostAuthLogin(c *fiber.Ctx) error {
	return controllers.HandleAuthLogin(c)
}

func (s *APIServer) PostAuthLogout(c *fiber.Ctx) error {
	return controllers.HandleAuthLogout(c)
}

// --- Profile ---

func (s *APIServer) GetProfile(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

func (s *APIServer) PostProfileAPIKey(c *fiber.Ctx) error {
	return controllers.HandleIssueAPIKey(c)
}

func (s *APIServer) DeleteProfileAPIKey(c *fiber.Ctx) error {
	return controllers.HandleRevokeAPIKey(c)
}

func (s *APIServer) PatchProfileSettings(c *fiber.Ctx) error {
	return controllers.HandleUpdateUserSettings(c)
}

// --- Clients ---

func (s *APIServer) GetClients(c *fiber.Ctx) error {
	return controllers.HandleListClients(c)
}

func (s *APIServer) PostClients(c *fiber.Ctx) error {
	return controllers.HandleCreateClient(c)
}

func (s *APIServer) GetClient(c *fiber.Ctx) error {
	return controllers.HandleGetClient(c)
}

func (s *APIServer) PatchClient(c *fiber.Ctx) error {
	return controllers.HandleUpdateClient(c)
}

func (s *APIServer) PostClientArchive(c *fiber.Ctx) error {
	return controllers.HandleArchiveClient(c)
}

// --- Catalog ---

func (s *APIServer) GetCatalog(c *fiber.Ctx) error {
	return controllers.HandleCatalogList(c)
}

func (s *APIServer) GetCatalogSearch(c *fiber.Ctx) error {
	return controllers.HandleCatalogSearch(c)
}

func (s *APIServer) GetCatalogItem(c *fiber.Ctx) error {
	return controllers.HandleCatalogItem(c)
}

// --- Plans ---

func (s *APIServer) PostPlans(c *fiber.Ctx) error {
	return controllers.HandleCreatePlan(c)
}

func (s *APIServer) GetPlan(c *fiber.Ctx) error {
	return controllers.HandleGetPlan(c)
}

func (s *APIServer) PatchPlan(c *fiber.Ctx) error {
	return controllers.HandleUpdatePlan(c)
}

func (s *APIServer) DeletePlan(c *fiber.Ctx) error {
	return controllers.HandleDeletePlan(c)
}

func (s *APIServer) PostPlanActivate(c *fiber.Ctx) error {
	return controllers.HandleActivatePlan(c)
}

func (s *APIServer) GetPlanSummary(c *fiber.Ctx) error {
	return controllers.HandlePlanSummary(c)
}

func (s *APIServer) GetPlanLineItems(c *fiber.Ctx) error {
	return controllers.HandlePlanLineItems(c)
}

func (s *APIServer) PostPlanPreview(c *fiber.Ctx) error {
	return controllers.HandlePlanPreview(c)
}

func (s *APIServer) PostPlanLineItems(c *fiber.Ctx) error {
	return controllers.HandleAddLineItem(c)
}

// --- Line items ---

func (s *APIServer) PatchLineItem(c *fiber.Ctx) error {
	return controllers.HandleUpdateLineItem(c)
}

func (s *APIServer) DeleteLineItem(c *fiber.Ctx) error {
	return controllers.HandleDeleteLineItem(c)
}

func (s *APIServer) PostLineItemUsage(c *fiber.Ctx) error {
	return controllers.HandleRecordUsage(c)
}

// --- Integration (API key) ---

func (s *APIServer) GetIntegrationPlanSummary(c *fiber.Ctx) error {
	return controllers.HandlePlanSummary(c)
}

func (s *APIServer) PostIntegrationLineItemUsage(c *fiber.Ctx) error {
	return controllers.HandleRecordUsage(c)
}

// --- Admin ---

func (s *APIServer) GetAdminStats(c *fiber.Ctx) error {
	return controllers.HandleAdminStats(c)
}

func (s *APIServer) GetAdminUsers(c *fiber.Ctx) error {
	return controllers.HandleAdminUsers(c)
}

func (s *APIServer) PostAdminUsers(c *fiber.Ctx) error {
	return controllers.HandleAdminCreateUser(c)
}

func (s *APIServer) PatchAdminUser(c *fiber.Ctx) error {
	return controllers.HandleAdminUserUpdate(c)
}

func (s *APIServer) DeleteAdminUser(c *fiber.Ctx) error {
	return controllers.HandleAdminUserDelete(c)
}

func (s *APIServer) PostAdminResendActivation(c *fiber.Ctx) error {
	return controllers.HandleAdminResendActivation(c)
}

func (s *APIServer) PostAdminNotifyExpiring(c *fiber.Ctx) error {
	return controllers.HandleAdminNotifyExpiring(c)
}

func (s *APIServer) GetAdminCache(c *fiber.Ctx) error {
	return controllers.HandleAdminCacheData(c)
}

func (s *APIServer) DeleteAdminCacheKey(c *fiber.Ctx) error {
	return controllers.HandleAdminCacheDelete(c)
}

func (s *APIServer) PostAdminCacheBulkDelete(c *fiber.Ctx) error {
	return controllers.HandleAdminCacheBulkDelete(c)
}
