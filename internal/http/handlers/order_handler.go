package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
	"cosmetica/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type updateOrderRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var req services.CreateOrderRequest
	// anonymous callers get 401 from the service whatever the body holds
	if err := c.BodyParser(&req); err != nil && u != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return errBadBody
	}
	orderID, err := h.Orders.Create(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": orderID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"orderId": orderID,
	})
}

// GET /api/orders/:page/:limit
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := validate.Page(c.Params("page"), 1)
	limit := validate.Page(c.Params("limit"), 10)
	res, err := h.Orders.List(c.UserContext(), currentUser(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// PUT /api/orders/:orderId
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var req updateOrderRequest
	u := currentUser(c)
	if err := c.BodyParser(&req); err != nil && u.IsAdmin() {
		return errBadBody
	}
	id := c.Params("orderId")
	o, err := h.Orders.UpdateStatus(c.UserContext(), u, id, domain.OrderStatus(req.Status), req.Note)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(fiber.Map{"message": "Order updated successfully", "order": o})
}

type receiptLine struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

// GET /api/orders/:orderId/receipt
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return apperr.Unauthenticated("Please login to view orders")
	}
	o, err := h.Orders.Get(c.UserContext(), u, c.Params("orderId"))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": c.Params("orderId")})
		}
		return err
	}
	lines := make([]receiptLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, receiptLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Subtotal: it.Subtotal().StringFixed(2),
		})
	}
	return render(c, "receipt", fiber.Map{
		"Order": o,
		"Lines": lines,
		"Total": o.Total.StringFixed(2),
	})
}
