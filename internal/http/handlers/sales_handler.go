package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/services"
)

type SalesHandler struct {
	Sales *services.SalesService
}

// GET /api/sales/chart-data
func (h *SalesHandler) ChartData(c *fiber.Ctx) error {
	out, err := h.Sales.ChartData(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GET /api/sales/analytics?days=N
func (h *SalesHandler) Analytics(c *fiber.Ctx) error {
	days := c.QueryInt("days", services.DefaultSalesDays)
	out, err := h.Sales.Analytics(c.UserContext(), currentUser(c), days)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
