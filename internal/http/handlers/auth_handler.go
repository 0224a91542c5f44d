package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/apperr"
	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

type AuthHandler struct {
	Auth  *services.AuthService
	Users *services.UserService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/users/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	u, err := h.Users.Register(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	applog.Audit(c, "auth.register", map[string]any{"email": u.Email, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully", "user": u})
}

// POST /api/users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	res, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return err
	}
	c.Locals(applog.UserKey, res.User)
	applog.Audit(c, "auth.login.success", map[string]any{"email": res.User.Email})
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"role":    res.User.Role,
		"user":    res.User,
	})
}

// POST /api/users/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	if err := h.Auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GET /api/users
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return apperr.InvalidRequest("User not found")
	}
	return c.JSON(u)
}
