package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

// currentUser is the authenticated user, or nil for anonymous requests.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(applog.UserKey).(*domain.User)
	return u
}

// Authenticate resolves the Authorization header into a user. Requests
// without the header continue anonymously; a present but unusable token is
// rejected.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		u, err := auth.CurrentUser(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(applog.UserKey, u)
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with msg.
func RequireUser(msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return apperr.Unauthenticated(msg)
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return apperr.Unauthenticated("Please login first")
		}
		if !u.IsAdmin() {
			return apperr.Forbidden("Access denied. Admin only")
		}
		return c.Next()
	}
}
