package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

type stockRequest struct {
	Qty *int `json:"qty"`
}

// GET /api/products/:productId/availability
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	avail, err := h.Inv.CheckAvailability(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(avail)
}

// PUT /api/products/:productId/stock
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	var req stockRequest
	if err := c.BodyParser(&req); err != nil || req.Qty == nil || *req.Qty < 0 {
		applog.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return fiber.NewError(fiber.StatusBadRequest, "qty must be a non-negative integer")
	}
	id := c.Params("productId")
	avail, err := h.Inv.SetStock(c.UserContext(), id, *req.Qty)
	if err != nil {
		return err
	}
	applog.Audit(c, "inventory.save", map[string]any{"product": id, "qty": *req.Qty})
	return c.JSON(avail)
}
