package handlers

import (
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth           *services.AuthService
	Metrics        *metrics.Metrics
	// LimiterStorage backs the rate limiters; nil keeps counters in process memory.
	LimiterStorage fiber.Storage
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, m *metrics.Metrics) *Deps {
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	authSvc := services.NewAuthService(db, tokens)
	userSvc := services.NewUserService(db, cfg.BcryptCost)
	catalogSvc := services.NewCatalogService(db)
	cartSvc := services.NewCartService(db)

	return &Deps{
		Auth:           authSvc,
		Metrics:        m,
		AuthHandler:    &AuthHandler{Auth: authSvc, Metrics: m},
		UserHandler:    &UserHandler{Users: userSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc, Metrics: m},
	}
}
