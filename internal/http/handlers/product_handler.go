package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cosmetica/internal/log"
	"cosmetica/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(ps)
}

// GET /api/products/:productId
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.Catalog.Get(c.UserContext(), currentUser(c), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return errBadBody
	}
	p, err := h.Catalog.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "products.create", map[string]any{"product": p.ProductID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": p})
}

// PUT /api/products/:productId
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return errBadBody
	}
	p, err := h.Catalog.Update(c.UserContext(), c.Params("productId"), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "products.update", map[string]any{"product": p.ProductID})
	return c.JSON(fiber.Map{"message": "Product updated successfully", "product": p})
}

// DELETE /api/products/:productId
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("productId")
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return err
	}
	applog.Audit(c, "products.delete", map[string]any{"product": id})
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
