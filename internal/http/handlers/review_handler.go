package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var in domain.Review
	if err := c.BodyParser(&in); err != nil {
		return errBadBody
	}
	rv, err := h.Reviews.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Info(c, "reviews.create", map[string]any{"review_id": rv.ID, "rating": rv.Rating})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review submitted successfully", "review": rv})
}

// GET /api/reviews
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	rs, err := h.Reviews.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rs)
}
