package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

type AdminHandler struct {
	Users     *services.UserService
	Dashboard *services.DashboardService
}

// GET /api/dashboard/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// GET /api/users/all
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// PUT /api/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req services.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	id := c.Params("id")
	u, err := h.Users.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.users.update", map[string]any{"target": id, "role": u.Role})
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": u})
}

// DELETE /api/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if u := currentUser(c); u != nil && u.ID == id {
		applog.Security(c, "admin.users.delete.self", nil)
		return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
	}
	if err := h.Users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target": id})
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// PATCH /api/users/:id/block
func (h *AdminHandler) ToggleBlock(c *fiber.Ctx) error {
	id := c.Params("id")
	blocked, err := h.Users.ToggleBlock(c.UserContext(), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.users.block", map[string]any{"target": id, "blocked": blocked})
	msg := "User unblocked successfully"
	if blocked {
		msg = "User blocked successfully"
	}
	return c.JSON(fiber.Map{"message": msg, "isBlocked": blocked})
}
