package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	c.Type("html", "utf-8")
	return c.Render(tmpl, data)
}
