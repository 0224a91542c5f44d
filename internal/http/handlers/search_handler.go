package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/apperr"
	"cosmetica/internal/log"
	"cosmetica/internal/services"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products/search/:query
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Params("query")
	products, err := h.Catalog.Search(c.UserContext(), rawQ)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidRequest) {
			log.Security(c, "validation.fail", map[string]any{"field": "query"})
		}
		return err
	}
	return c.JSON(products)
}
