package handlers

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Mount registers every route with its access rule.
func Mount(app *fiber.App, d *Deps, cfg config.Config) {
	guard := func(a Access) fiber.Handler { return Guard(d.Auth, a) }
	admin := Roles(domain.RoleAdmin)

	app.Get("/", guard(Public), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the storefront API"})
	})
	app.Get("/healthz", guard(Public), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	if d.Metrics != nil {
		app.Get("/metrics", guard(Public), adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	attempts := cfg.SigninRateMax
	if attempts <= 0 {
		attempts = 5
	}
	signinLimiter := limiter.New(limiter.Config{
		Max:        attempts,
		Expiration: 10 * time.Minute,
		Storage:    d.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "signin|" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.block", map[string]any{"route": "/auth/signin"})
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many sign-in attempts, try again later")
		},
	})
	app.Post("/auth/signin", guard(Public), signinLimiter, d.AuthHandler.SignIn)

	app.Post("/user", guard(Public), d.UserHandler.Create)
	app.Get("/user", guard(admin), d.UserHandler.List)
	app.Get("/user/:id", guard(Authenticated()), d.UserHandler.Get)
	app.Patch("/user/:id", guard(Authenticated()), d.UserHandler.Update)
	app.Delete("/user/:id", guard(Authenticated()), d.UserHandler.Delete)

	app.Post("/product", guard(admin), d.ProductHandler.Create)
	app.Get("/product", guard(Public), d.ProductHandler.List)
	app.Get("/product/:id", guard(Public), d.ProductHandler.Get)
	app.Patch("/product/:id", guard(admin), d.ProductHandler.Update)
	app.Delete("/product/:id", guard(admin), d.ProductHandler.Delete)

	app.Get("/cart/:userId", guard(Authenticated()), d.CartHandler.Get)
	app.Get("/cart/:userId/history", guard(Authenticated()), d.CartHandler.History)
	app.Post("/cart/:userId/:productId/add-product", guard(Authenticated()), d.CartHandler.AddProduct)
	app.Delete("/cart/:userId/:productId", guard(Authenticated()), d.CartHandler.RemoveProduct)
	app.Post("/cart/:id/checkout", guard(Authenticated()), d.CartHandler.Checkout)
}
