package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/models"
	"github.com/OliverBrennan/PlanLedger/app/repository"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/statistics"
	"github.com/OliverBrennan/PlanLedger/internal/pkg/usercontext"
)

type clientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NDISNumber  string `json:"ndis_number"`
	DateOfBirth string `json:"date_of_birth"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}

// HandleListClients returns the caller's caseload. Admins see every
// client; ?q= switches to search, ?include_archived=1 widens the list.
func HandleListClients(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repo := repository.GetGlobalFactory().GetClientRepository()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		clients, err := repo.Search(query)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Search failed"})
		}
		if !userCtx.IsAdmin {
			clients = filterByOwner(clients, userCtx.UserID)
		}
		return c.JSON(fiber.Map{"clients": clients, "count": len(clients)})
	}

	if userCtx.IsAdmin {
		clients, err := repo.List(0, 200)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load clients"})
		}
		return c.JSON(fiber.Map{"clients": clients, "count": len(clients)})
	}

	includeArchived := c.QueryBool("include_archived", false)
	clients, err := repo.GetByUserID(userCtx.UserID, includeArchived)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load clients"})
	}

	return c.JSON(fiber.Map{"clients": clients, "count": len(clients)})
}

// HandleCreateClient registers a new client under the calling user.
func HandleCreateClient(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	client := models.Client{
		UserID:     userCtx.UserID,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		NDISNumber: strings.TrimSpace(req.NDISNumber),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Notes:      req.Notes,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "date_of_birth must be YYYY-MM-DD"})
		}
		client.DateOfBirth = &dob
	}

	if err := client.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetClientRepository()
	if existing, err := repo.GetByNDISNumber(client.NDISNumber); err == nil && existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "a client with this NDIS number already exists"})
	}

	if err := repo.Create(&client); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create client"})
	}

	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"client": client})
}

// HandleGetClient returns one client with their plans.
func HandleGetClient(c *fiber.Ctx) error {
	client, errResp := clientFromParam(c)
	if client == nil {
		return errResp
	}

	return c.JSON(fiber.Map{"client": client})
}

// HandleUpdateClient updates contact details and notes.
func HandleUpdateClient(c *fiber.Ctx) error {
	client, errResp := clientFromParam(c)
	if client == nil {
		return errResp
	}

	var req clientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	if req.FirstName != "" {
		client.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		client.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Email != "" {
		client.Email = strings.TrimSpace(req.Email)
	}
	if req.Phone != "" {
		client.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Notes != "" {
		client.Notes = req.Notes
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": "date_of_birth must be YYYY-MM-DD"})
		}
		client.DateOfBirth = &dob
	}

	if err := client.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetClientRepository()
	if err := repo.Update(client); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update client"})
	}

	return c.JSON(fiber.Map{"client": client})
}

// HandleArchiveClient hides a client from the default caseload list.
// Plans and line items stay untouched.
func HandleArchiveClient(c *fiber.Ctx) error {
	client, errResp := clientFromParam(c)
	if client == nil {
		return errResp
	}

	repo := repository.GetGlobalFactory().GetClientRepository()
	if err := repo.Archive(client.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to archive client"})
	}

	return c.JSON(fiber.Map{"message": "client archived"})
}

// clientFromParam loads the :uuid client and enforces ownership. On
// failure the JSON response is already written and the client is nil;
// callers must return the error value as-is.
func clientFromParam(c *fiber.Ctx) (*models.Client, error) {
	userCtx := usercontext.GetUserContext(c)

	uuid := c.Params("uuid")
	if uuid == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "client uuid missing"})
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

func filterByOwner(clients []models.Client, userID uint) []models.Client {
	owned := make([]models.Client, 0, len(clients))
	for _, client := range clients {
		if client.UserID == userID {
			owned = append(owned, client)
		}
	}
	return owned
}
