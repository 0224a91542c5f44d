package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"cosmetica/internal/config"
	applog "cosmetica/internal/log"
)

//go:embed views/*.html
var viewsFS embed.FS

// MaxBodySize caps every request body.
const MaxBodySize = 1 << 20 // 1 MiB

func newViews() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}

func rateLimited(action, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		applog.Security(c, action, nil)
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": msg})
	}
}

// NewApp builds the HTTP API: middleware stack, routes and error handling.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	decimal.MarshalJSONWithoutQuotes = true
	app := fiber.New(fiber.Config{
		Views:        newViews(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    MaxBodySize,
		UnescapePath: true,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = MaxBodySize

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit,
			Expiration:   time.Minute,
			LimitReached: rateLimited("rate.global.hit", "Too many requests, retry soon"),
		}))
	}
	app.Use(Authenticate(deps.Auth))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Users & auth (login throttled)
	loginLimit := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.LoginRateLimit > 0 {
		loginLimit = limiter.New(limiter.Config{
			Max:          cfg.LoginRateLimit,
			Expiration:   10 * time.Minute,
			LimitReached: rateLimited("rate.login.hit", "Too many attempts. Please try again later."),
		})
	}
	users := api.Group("/users")
	users.Get("/", deps.AuthHandler.Me)
	users.Post("/register", deps.AuthHandler.Register)
	users.Post("/login", loginLimit, deps.AuthHandler.Login)
	users.Post("/logout", RequireUser("Please login first"), deps.AuthHandler.Logout)
	users.Get("/all", RequireAdmin(), deps.AdminHandler.ListUsers)
	users.Put("/:id", RequireAdmin(), deps.AdminHandler.UpdateUser)
	users.Delete("/:id", RequireAdmin(), deps.AdminHandler.DeleteUser)
	users.Patch("/:id/block", RequireAdmin(), deps.AdminHandler.ToggleBlock)

	// Catalog
	products := api.Group("/products")
	products.Get("/", deps.ProductHandler.List)
	products.Post("/", RequireAdmin(), deps.ProductHandler.Create)
	products.Get("/search/:query", deps.SearchHandler.Search)
	products.Get("/categories", deps.CategoryHandler.List)
	products.Get("/:productId/availability", deps.InventoryHandler.Check)
	products.Put("/:productId/stock", RequireAdmin(), deps.InventoryHandler.SetStock)
	products.Get("/:productId", deps.ProductHandler.Get)
	products.Put("/:productId", RequireAdmin(), deps.ProductHandler.Update)
	products.Delete("/:productId", RequireAdmin(), deps.ProductHandler.Delete)

	// Orders; the receipt route must precede /:page/:limit
	orders := api.Group("/orders")
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:orderId/receipt", deps.OrderHandler.Receipt)
	orders.Get("/:page/:limit", deps.OrderHandler.List)
	orders.Put("/:orderId", deps.OrderHandler.Update)

	reviews := api.Group("/reviews")
	reviews.Get("/", deps.ReviewHandler.List)
	reviews.Post("/", deps.ReviewHandler.Create)

	contacts := api.Group("/contacts")
	contacts.Post("/", deps.ContactHandler.Create)
	contacts.Get("/", RequireAdmin(), deps.ContactHandler.List)
	contacts.Get("/:id", RequireAdmin(), deps.ContactHandler.Get)
	contacts.Delete("/:id", RequireAdmin(), deps.ContactHandler.Delete)

	api.Get("/dashboard/stats", RequireAdmin(), deps.AdminHandler.Stats)

	sales := api.Group("/sales")
	sales.Get("/chart-data", deps.SalesHandler.ChartData)
	sales.Get("/analytics", deps.SalesHandler.Analytics)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})

	return app
}
