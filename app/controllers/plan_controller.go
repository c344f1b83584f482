package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/budget"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/metrics/counter"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/statistics"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/usercontext"
)

type planRequest struct {
	ClientUUID     string `json:"client_uuid"`
	Title          string `json:"title"`
	TotalAvailable string `json:"total_available"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Activate       bool   `json:"activate"`
}

// HandleCreatePlan creates a funding plan for a client, optionally
// activating it in the same request.
func HandleCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	client, errResp := clientByUUID(c, req.ClientUUID)
	if client == nil {
		return errResp
	}

	total, err := decimal.NewFromString(strings.TrimSpace(req.TotalAvailable))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "total_available must be a decimal amount"})
	}

	var startDate, endDate *time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "start_date must be YYYY-MM-DD"})
		}
		startDate = &parsed
	}
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "end_date must be YYYY-MM-DD"})
		}
		endDate = &parsed
	}

	plan := models.BudgetPlan{
		ClientID:       client.ID,
		Title:          strings.TrimSpace(req.Title),
		TotalAvailable: total,
		StartDate:      startDate,
		EndDate:        endDate,
	}
	if err := plan.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetBudgetPlanRepository()
	if err := repo.Create(&plan); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create plan"})
	}

	if req.Activate {
		if err := repo.SetActive(client.ID, plan.ID); err != nil {
			log.Printf("failed to activate plan %d on create: %v", plan.ID, err)
		} else {
			plan.IsActive = true
		}
	}

	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

// HandleGetPlan returns a plan with its line items and bumps the view
// counter.
func HandleGetPlan(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	repo := repository.GetGlobalFactory().GetBudgetPlanRepository()
	full, err := repo.GetByIDWithLineItems(plan.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	counter.AddPlanView(full.ID)

	return c.JSON(fiber.Map{"plan": full})
}

// HandleUpdatePlan updates plan attributes. Shrinking the available
// total below the allocated sum is allowed; the summary then reports
// the plan as over budget.
func HandleUpdatePlan(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	if req.Title != "" {
		plan.Title = strings.TrimSpace(req.Title)
	}
	if req.TotalAvailable != "" {
		total, err := decimal.NewFromString(strings.TrimSpace(req.TotalAvailable))
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "total_available must be a decimal amount"})
		}
		plan.TotalAvailable = total
	}
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "start_date must be YYYY-MM-DD"})
		}
		plan.StartDate = &parsed
	}
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "end_date must be YYYY-MM-DD"})
		}
		plan.EndDate = &parsed
	}

	if err := plan.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetBudgetPlanRepository()
	if err := repo.Update(plan); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update plan"})
	}

	return c.JSON(fiber.Map{"plan": plan})
}

// HandleActivatePlan makes this the client's single active plan.
func HandleActivatePlan(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	repo := repository.GetGlobalFactory().GetBudgetPlanRepository()
	if err := repo.SetActive(plan.ClientID, plan.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to activate plan"})
	}
	plan.IsActive = true

	go statistics.UpdateStatisticsCache()

	return c.JSON(fiber.Map{"plan": plan, "message": "plan activated"})
}

// HandleDeletePlan removes a plan and its line items.
func HandleDeletePlan(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	repo := repository.GetGlobalFactory().GetBudgetPlanRepository()
	if err := repo.Delete(plan.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete plan"})
	}

	go statistics.UpdateStatisticsCache()

	return c.JSON(fiber.Map{"message": "plan deleted"})
}

// HandlePlanSummary returns the allocation summary for a plan.
func HandlePlanSummary(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	summary, err := GetBudgetService().Summary(c.Context(), plan.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to build summary"})
	}

	return c.JSON(fiber.Map{"summary": summary})
}

// HandlePlanLineItems lists the plan's line items with balances.
func HandlePlanLineItems(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	repo := repository.GetGlobalFactory().GetLineItemRepository()
	items, err := repo.GetByPlanID(plan.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load line items"})
	}

	return c.JSON(fiber.Map{"line_items": items, "count": len(items)})
}

// HandlePlanPreview evaluates a change without writing anything. The
// SPA calls this while the user edits the allocation form.
func HandlePlanPreview(c *fiber.Ctx) error {
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	var in budget.ChangeInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	result, err := GetBudgetService().Preview(c.Context(), plan.ID, in)
	if err != nil {
		return respondBudgetError(c, err)
	}

	return c.JSON(result)
}

// planFromParam loads the :uuid plan and enforces ownership through the
// owning client. On failure the JSON response is already written and
// the plan is nil; callers must return the error value as-is.
func planFromParam(c *fiber.Ctx) (*models.BudgetPlan, error) {
	userCtx := usercontext.GetUserContext(c)

	uuid := c.Params("uuid")
	if uuid == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "plan uuid missing"})
	}

	factory := repository.GetGlobalFactory()
	plan, err := factory.GetBudgetPlanRepository().GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Plan not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	if !userCtx.IsAdmin {
		client, err := factory.GetClientRepository().GetByID(plan.ClientID)
		if err != nil {
			return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load client"})
		}
		if client.UserID != userCtx.UserID {
			return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "plan belongs to another user's client"})
		}
	}

	return plan, nil
}

// clientByUUID resolves a client UUID from a request body with the same
// ownership rules as clientFromParam.
func clientByUUID(c *fiber.Ctx, uuid string) (*models.Client, error) {
	userCtx := usercontext.GetUserContext(c)

	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "client_uuid is required"})
	}

	repo := repository.GetGlobalFactory().GetClientRepository()
	client, err := repo.GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Client not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load client"})
	}

	if !userCtx.IsAdmin && client.UserID != userCtx.UserID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "client belongs to another user"})
	}

	return client, nil
}
