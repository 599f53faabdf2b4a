package handlers

import (
	"strings"
	"time"

	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/tracing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the fiber app with the full middleware stack and every route mounted.
func NewApp(d *Deps, cfg config.Config) *fiber.App {
	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(tracing.Middleware("storefront"))
	app.Use(applog.Access())
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
	}
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    d.LimiterStorage,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || strings.HasPrefix(p, "/metrics")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.block", map[string]any{"route": c.Path()})
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, try again later")
		},
	}))

	Mount(app, d, cfg)
	return app
}
