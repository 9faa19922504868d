package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
)

const bodyLimit = 1 << 20 // 1 MiB

func newApp(name string, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: `{"time":"${time}","req_id":"${locals:requestid}","status":${status},"latency":"${latency}","method":"${method}","path":"${path}"}` + "\n",
	}))
	app.Use(helmet.New())
	app.Use(metrics.Middleware(name))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/api/images/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "rate_limited", "Rate limit exceeded, retry soon", "")
		},
	}))

	app.Get("/metrics", metrics.Handler())
	return app
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func notFound(c *fiber.Ctx) error {
	return fail(c, fiber.StatusNotFound, "not_found", "Not found", "")
}

func loginLimiter(action string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, action, nil)
			return fail(c, fiber.StatusTooManyRequests, "rate_limited", "Too many attempts. Please try again later.", "")
		},
	})
}

// NewShopApp mounts the shop API under /api.
func NewShopApp(d *ShopDeps, cfg config.Config) *fiber.App {
	app := newApp("shop", cfg)
	requireToken := RequireToken(d.Tokens)

	api := app.Group("/api")
	api.Get("/health", health)

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/categories", d.CategoryHandler.List)

	api.Get("/cart", requireToken, d.CartHandler.View)
	api.Post("/cart/items", requireToken, d.CartHandler.Add)
	api.Patch("/cart/items/:itemId", requireToken, d.CartHandler.Update)
	api.Delete("/cart/items/:itemId", requireToken, d.CartHandler.Remove)
	api.Delete("/cart", requireToken, d.CartHandler.Clear)

	api.Post("/checkout", requireToken, d.OrderHandler.Place)
	api.Get("/orders", requireToken, d.OrderHandler.History)

	api.Get("/images/products/:filename", d.ImageHandler.Product)

	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", loginLimiter("rate.login.hit"), d.AuthHandler.Login)
	api.Get("/auth/me", requireToken, d.AuthHandler.Me)

	app.Use(notFound)
	return app
}

// NewSdetApp mounts the SDET API under /api.
func NewSdetApp(d *SdetDeps, cfg config.Config) *fiber.App {
	app := newApp("sdet", cfg)
	requireToken := RequireToken(d.Tokens)

	api := app.Group("/api")
	api.Get("/health", health)
	api.Post("/sdet/auth/register", d.SdetHandler.Register)
	api.Post("/sdet/auth/login", loginLimiter("rate.sdet.login.hit"), d.AuthHandler.Login)
	api.Get("/sdet/user", requireToken, d.SdetHandler.Profile)
	api.Put("/sdet/user", requireToken, d.SdetHandler.Upsert)

	app.Use(notFound)
	return app
}
