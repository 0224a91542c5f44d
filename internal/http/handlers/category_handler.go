package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats})
}
