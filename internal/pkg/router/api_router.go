package router

import (
	"strconv"
	"time"

	apiv1 "github.com/OliverBrennan/PlanLedger/internal/api/v1"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/env"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        rateLimitPerMinute(),
		Expiration: time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func rateLimitPerMinute() int {
	max, err := strconv.Atoi(env.GetEnv("API_RATE_LIMIT", "120"))
	if err != nil || max <= 0 {
		return 120
	}
	return max
}
