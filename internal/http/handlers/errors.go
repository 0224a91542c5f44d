package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/apperr"
	applog "cosmetica/internal/log"
)

// ErrorHandler renders every error as {"message": ...}. Internal causes are
// logged and replaced by a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.Status(ae.Status())
		switch ae.Kind {
		case apperr.KindInternal:
			applog.Error(c, "server.error", err, nil)
		case apperr.KindUnauthenticated, apperr.KindForbidden:
			applog.Security(c, "access.denied", map[string]any{"reason": ae.Message})
		}
		return c.JSON(fiber.Map{"message": ae.Message})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, "server.error", err, nil)
	return c.JSON(fiber.Map{"message": "Internal server error"})
}

var errBadBody = apperr.InvalidRequest("Invalid request body")
