package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/OliverBrennan/PlanLedger/app/repository"
)

// HandleCatalogList returns all active catalog items. The repository
// serves this from cache when warm.
func HandleCatalogList(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetCatalogRepository()
	items, err := repo.GetActive()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load catalog"})
	}

	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// HandleCatalogSearch filters the catalog by code or name, optionally
// narrowed to a category.
func HandleCatalogSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "query parameter q is required"})
	}
	category := strings.TrimSpace(c.Query("category"))

	repo := repository.GetGlobalFactory().GetCatalogRepository()
	items, err := repo.Search(query, category)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Search failed"})
	}

	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// HandleCatalogItem returns a single catalog item by its code.
func HandleCatalogItem(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "item code missing"})
	}

	repo := repository.GetGlobalFactory().GetCatalogRepository()
	item, err := repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Catalog item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load catalog item"})
	}

	return c.JSON(fiber.Map{"item": item})
}
