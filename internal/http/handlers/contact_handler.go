package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

type ContactHandler struct {
	Contacts *services.ContactService
}

// POST /api/contacts
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var in domain.Contact
	if err := c.BodyParser(&in); err != nil {
		return errBadBody
	}
	ct, err := h.Contacts.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Info(c, "contacts.create", map[string]any{"contact_id": ct.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Message sent successfully", "contact": ct})
}

// GET /api/contacts
func (h *ContactHandler) List(c *fiber.Ctx) error {
	cs, err := h.Contacts.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

// GET /api/contacts/:id
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	ct, err := h.Contacts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ct)
}

// DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Contacts.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "admin.contacts.delete", map[string]any{"contact_id": id})
	return c.JSON(fiber.Map{"message": "Contact deleted successfully"})
}
