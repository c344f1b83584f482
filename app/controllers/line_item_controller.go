package controllers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/allocation"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/budget"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/usercontext"
)

// Global budget service instance shared by the plan and line item handlers
var budgetService *budget.Service

// InitializeBudgetController wires the budget service to the global
// repository factory. Called once during router installation.
func InitializeBudgetController() {
	budgetService = budget.NewServiceFromFactory(repository.GetGlobalFactory(), budget.LoadConfig())
}

// GetBudgetService returns the global budget service instance
func GetBudgetService() *budget.Service {
	if budgetService == nil {
		InitializeBudgetController()
	}
	return budgetService
}

type lineItemChangeRequest struct {
	budget.ChangeInput
	ConfirmToken string `json:"confirm_token"`
}

type deleteLineItemRequest struct {
	Confirm string `json:"confirm"`
}

type usageRequest struct {
	Units int `json:"units"`
}

// HandleAddLineItem stages a new allocation against the plan. An exact
// fit commits immediately; anything else returns a confirmation token
// the caller resubmits to commit.
func HandleAddLineItem(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	plan, errResp := planFromParam(c)
	if plan == nil {
		return errResp
	}

	var req lineItemChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	req.Action = budget.ActionAdd
	req.LineItemID = 0

	result, err := stageOrCommit(c, userCtx.UserID, plan.ID, req)
	if err != nil {
		return respondBudgetError(c, err)
	}

	status := fiber.StatusOK
	if result.Committed {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// HandleUpdateLineItem stages a quantity change on an existing line
// item, running the used-quantity floor check before any budget math.
func HandleUpdateLineItem(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	item, plan, errResp := lineItemFromParam(c)
	if item == nil {
		return errResp
	}

	var req lineItemChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	req.Action = budget.ActionUpdate
	req.LineItemID = item.ID

	result, err := stageOrCommit(c, userCtx.UserID, plan.ID, req)
	if err != nil {
		return respondBudgetError(c, err)
	}

	return c.JSON(result)
}

// HandleDeleteLineItem removes a line item once the caller sends the
// literal confirmation text. The resulting budget delta is reported back.
func HandleDeleteLineItem(c *fiber.Ctx) error {
	item, plan, errResp := lineItemFromParam(c)
	if item == nil {
		return errResp
	}

	var req deleteLineItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	result, err := GetBudgetService().DeleteLineItem(c.Context(), plan.ID, item.ID, req.Confirm)
	if err != nil {
		return respondBudgetError(c, err)
	}

	return c.JSON(result)
}

// HandleRecordUsage books delivered units against a line item. Usage
// never moves money; it only burns down the booked quantity.
func HandleRecordUsage(c *fiber.Ctx) error {
	item, plan, errResp := lineItemFromParam(c)
	if item == nil {
		return errResp
	}

	var req usageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	result, err := GetBudgetService().RecordUsage(c.Context(), plan.ID, item.ID, req.Units)
	if err != nil {
		return respondBudgetError(c, err)
	}

	return c.JSON(result)
}

// stageOrCommit routes a change through the confirmation flow: with a
// token it commits, without one it stages and evaluates.
func stageOrCommit(c *fiber.Ctx, userID, planID uint, req lineItemChangeRequest) (*budget.StageResult, error) {
	svc := GetBudgetService()
	if req.ConfirmToken != "" {
		return svc.CommitConfirmed(c.Context(), userID, planID, req.ConfirmToken, req.ChangeInput)
	}
	return svc.StageLineChange(c.Context(), userID, planID, req.ChangeInput)
}

// lineItemFromParam loads the :id line item and its plan, enforcing
// ownership through the owning client. On failure the JSON response is
// already written and the item is nil.
func lineItemFromParam(c *fiber.Ctx) (*models.BudgetLineItem, *models.BudgetPlan, error) {
	userCtx := usercontext.GetUserContext(c)

	id := parseIDParam(c, "id")
	if id == 0 {
		return nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "line item id missing"})
	}

	factory := repository.GetGlobalFactory()
	item, err := factory.GetLineItemRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Line item not found"})
		}
		return nil, nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load line item"})
	}

	plan, err := factory.GetBudgetPlanRepository().GetByID(item.PlanID)
	if err != nil {
		return nil, nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	if !userCtx.IsAdmin {
		client, err := factory.GetClientRepository().GetByID(plan.ClientID)
		if err != nil {
			return nil, nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load client"})
		}
		if client.UserID != userCtx.UserID {
			return nil, nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "line item belongs to another user's client"})
		}
	}

	return item, plan, nil
}

// respondBudgetError maps service errors onto the API error shape.
// Rule violations are 422, confirmation conflicts 409, missing
// records 404; anything unexpected logs and returns 500.
func respondBudgetError(c *fiber.Ctx, err error) error {
	var floorErr *allocation.QuantityFloorError
	if errors.As(err, &floorErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": floorErr.Error()})
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": validationErrs.Error()})
	}

	switch {
	case errors.Is(err, budget.ErrInvalidChange),
		errors.Is(err, budget.ErrConfirmTextMismatch),
		errors.Is(err, budget.ErrUsageExceedsQuantity),
		errors.Is(err, budget.ErrPriceAboveCap),
		errors.Is(err, models.ErrNegativeAmount):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	case errors.Is(err, budget.ErrConfirmTokenMismatch),
		errors.Is(err, budget.ErrStaleConfirmation):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	case errors.Is(err, budget.ErrLineNotInPlan),
		errors.Is(err, allocation.ErrLineNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	}

	log.Printf("budget operation failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "budget operation failed"})
}
