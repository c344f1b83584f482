package router

import (
	"github.com/OliverBrennan/PlanLedger/app/controllers"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/middleware"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controller with repositories
	controllers.InitializeAdminController()

	// Initialize admin cache controller with repository
	controllers.InitializeAdminCacheController()

	// Initialize budget controller with repositories
	controllers.InitializeBudgetController()

	app.Get("/healthz", handleHealthz)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// handleHealthz reports liveness; it does not touch the database so load
// balancers get an answer even while MySQL is restarting.
func handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
