package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/ratelimit"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

func main() {
	cfg := config.Load()

	logger, err := applog.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	applog.Use(logger)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("open db", zap.String("dsn", cfg.DBDSN), zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.SeedDemo {
		if err := repos.SeedCatalog(ctx, db); err != nil {
			logger.Fatal("seed catalog", zap.Error(err))
		}
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		email, ok := validate.Email(cfg.AdminEmail)
		if !ok || !validate.Password(cfg.AdminPassword) {
			logger.Fatal("ADMIN_EMAIL or ADMIN_PASSWORD is invalid")
		}
		hash, err := services.NewUserService(db, cfg.BcryptCost).Hash(cfg.AdminPassword)
		if err != nil {
			logger.Fatal("hash admin password", zap.Error(err))
		}
		if err := repos.SeedAdmin(ctx, db, email, hash); err != nil {
			logger.Fatal("seed admin", zap.Error(err))
		}
		logger.Info("admin account ready", zap.String("email", email), zap.String("role", string(domain.RoleAdmin)))
	}

	deps := handlers.NewDeps(db, cfg, metrics.New("storefront"))
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("rate limits shared through redis", zap.String("addr", cfg.RedisAddr))
		store := ratelimit.NewRedisStorage(rdb, "")
		defer store.Close()
		deps.LimiterStorage = store
	}
	app := handlers.NewApp(deps, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("http server listening", zap.String("port", cfg.Port))
	if err := serve(app, ":"+cfg.Port, quit); err != nil {
		logger.Fatal("http server error", zap.Error(err))
	}
	logger.Info("http server stopped")
}

// serve runs app on addr until Listen fails or a signal arrives on quit, then shuts down
// gracefully. A Listen failure is returned instead of leaving the process idle.
func serve(app *fiber.App, addr string, quit <-chan os.Signal) error {
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()

	select {
	case err := <-errc:
		if err == nil {
			err = errors.New("server stopped unexpectedly")
		}
		return err
	case <-quit:
	}

	applog.L().Info("shutting down")
	return app.ShutdownWithTimeout(5 * time.Second)
}
