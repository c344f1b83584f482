package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/database"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/mail"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/session"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/statistics"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/usercontext"
)

// AdminController handles admin-related HTTP requests using repository pattern
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{
		repos: repos,
	}
}

// HandleStats returns the practice dashboard numbers: cached practice
// statistics plus seven-day creation series for users and plans.
func (ac *AdminController) HandleStats(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -6)

	userSeries, err := ac.repos.User.GetDailyStats(weekAgo, now)
	if err != nil {
		log.Printf("failed to load user daily stats: %v", err)
		userSeries = []models.DailyStats{}
	}
	planSeries, err := ac.repos.BudgetPlan.GetDailyStats(weekAgo, now)
	if err != nil {
		log.Printf("failed to load plan daily stats: %v", err)
		planSeries = []models.DailyStats{}
	}

	recentUsers, err := ac.repos.User.List(0, 5)
	if err != nil {
		return ac.handleError(c, "Failed to load recent users", err)
	}

	return c.JSON(fiber.Map{
		"totals": fiber.Map{
			"clients":           stats.TotalClients,
			"plans":             stats.TotalPlans,
			"active_plans":      stats.ActivePlans,
			"expiring_plans":    stats.ExpiringPlans,
			"over_budget_plans": stats.OverBudgetPlans,
			"users":             stats.TotalUsers,
		},
		"daily": fiber.Map{
			"users": userSeries,
			"plans": planSeries,
		},
		"recent_users": recentUsers,
	})
}

// HandleUsers returns the staff list with caseload counters.
func (ac *AdminController) HandleUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 20
	offset := (page - 1) * perPage

	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get user count", err)
	}

	usersWithCaseload, err := ac.repos.User.GetWithCaseload(offset, perPage)
	if err != nil {
		return ac.handleError(c, "Failed to get users with caseload", err)
	}

	totalPages := int(totalUsers) / perPage
	if int(totalUsers)%perPage > 0 {
		totalPages++
	}

	users := make([]fiber.Map, len(usersWithCaseload))
	for i, uc := range usersWithCaseload {
		users[i] = fiber.Map{
			"id":            uc.User.ID,
			"name":          uc.User.Name,
			"email":         uc.User.Email,
			"role":          uc.User.Role,
			"status":        uc.User.Status,
			"job_title":     uc.User.JobTitle,
			"last_login_at": formatTimePtr(uc.User.LastLoginAt),
			"caseload": fiber.Map{
				"clients":      uc.ClientCount,
				"plans":        uc.PlanCount,
				"active_plans": uc.ActivePlanCount,
			},
		}
	}

	return c.JSON(fiber.Map{
		"users":       users,
		"page":        page,
		"total_pages": totalPages,
		"total":       totalUsers,
	})
}

// HandleCreateUser registers a practitioner account on behalf of the
// practice; the activation mail still goes out to the new user.
func (ac *AdminController) HandleCreateUser(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		JobTitle string `json:"job_title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	}
	user.JobTitle = strings.TrimSpace(req.JobTitle)
	if req.Role == models.ROLE_ADMIN {
		user.Role = models.ROLE_ADMIN
	}

	if err := user.GenerateActivationToken(); err != nil {
		return ac.handleError(c, "Failed to prepare activation", err)
	}

	if err := ac.repos.User.Create(user); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "email address is already registered"})
	}

	go func(to, name, token string) {
		if err := mail.SendActivationMail(to, name, token); err != nil {
			log.Printf("failed to send activation mail to %s: %v", to, err)
		}
	}(user.Email, user.Name, user.ActivationToken)

	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
			"status": user.Status,
		},
	})
}

// HandleUserUpdate updates account fields of a staff member.
func (ac *AdminController) HandleUserUpdate(c *fiber.Ctx) error {
	id := parseIDParam(c, "id")
	if id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "user id missing"})
	}

	user, err := ac.repos.User.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return ac.handleError(c, "Failed to load user", err)
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Status   string `json:"status"`
		JobTitle string `json:"job_title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	if req.JobTitle != "" {
		user.JobTitle = strings.TrimSpace(req.JobTitle)
	}

	if err := user.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	}

	if err := ac.repos.User.Update(user); err != nil {
		return ac.handleError(c, "Failed to update user", err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// HandleUserDelete removes a staff account. Self-deletion is blocked.
func (ac *AdminController) HandleUserDelete(c *fiber.Ctx) error {
	id := parseIDParam(c, "id")
	if id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "user id missing"})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return ac.handleError(c, "Failed to read session", err)
	}
	if currentUserID, ok := sess.Get(usercontext.KeyUserID).(uint); ok && currentUserID == id {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "you cannot delete your own account"})
	}

	if err := ac.repos.User.Delete(id); err != nil {
		return ac.handleError(c, "Failed to delete user", err)
	}

	go statistics.UpdateStatisticsCache()

	return c.JSON(fiber.Map{"message": "user deleted"})
}

// HandleResendActivation regenerates the activation token and mails it.
func (ac *AdminController) HandleResendActivation(c *fiber.Ctx) error {
	id := parseIDParam(c, "id")
	if id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "user id missing"})
	}

	user, err := ac.repos.User.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return ac.handleError(c, "Failed to load user", err)
	}

	if user.IsActive() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "account is already active"})
	}

	if err := user.GenerateActivationToken(); err != nil {
		return ac.handleError(c, "Failed to generate activation token", err)
	}
	if err := ac.repos.User.Update(user); err != nil {
		return ac.handleError(c, "Failed to store activation token", err)
	}

	if err := mail.SendActivationMail(user.Email, user.Name, user.ActivationToken); err != nil {
		return ac.handleError(c, "Failed to send activation mail", err)
	}

	return c.JSON(fiber.Map{"message": "activation mail sent"})
}

// HandleNotifyExpiring mails each practitioner about their clients'
// plans that end inside the expiry window. Mail failures are logged
// and skipped, never fatal.
func (ac *AdminController) HandleNotifyExpiring(c *fiber.Ctx) error {
	window := statistics.ExpiryWindow()
	plans, err := ac.repos.BudgetPlan.GetExpiring(time.Now(), window)
	if err != nil {
		return ac.handleError(c, "Failed to load expiring plans", err)
	}

	db := database.GetDB()
	sent := 0
	skipped := 0
	for _, plan := range plans {
		staff := plan.Client.User
		if staff.Email == "" || plan.EndDate == nil {
			skipped++
			continue
		}

		settings, err := models.GetOrCreateUserSettings(db, staff.ID)
		if err == nil && !settings.NotifyPlanExpiry {
			skipped++
			continue
		}

		allocated, err := ac.repos.BudgetPlan.SumAllocated(plan.ID)
		if err != nil {
			log.Printf("failed to sum allocations for plan %d: %v", plan.ID, err)
			skipped++
			continue
		}

		title := plan.Title
		if title == "" {
			title = "Unnamed plan"
		}
		err = mail.SendPlanExpiryMail(staff.Email, staff.Name, plan.Client.FullName(), title, *plan.EndDate, plan.TotalAvailable.Sub(allocated))
		if err != nil {
			log.Printf("failed to send expiry mail for plan %d to %s: %v", plan.ID, staff.Email, err)
			skipped++
			continue
		}
		sent++
	}

	return c.JSON(fiber.Map{
		"expiring": len(plans),
		"sent":     sent,
		"skipped":  skipped,
		"window":   window.String(),
	})
}

// handleError handles errors consistently
func (ac *AdminController) handleError(c *fiber.Ctx, message string, err error) error {
	log.Printf("Admin Controller Error: %s - %v", message, err)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_server_error",
		"message": message,
	})
}
