package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret is only used when JWT_SECRET is unset; Load warns about it.
const devJWTSecret = "storefront-dev-secret-change-me"

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string

	JWTSecret string
	JWTTTL    time.Duration
	JWTIssuer string

	BcryptCost int

	AdminEmail    string
	AdminPassword string

	CORSOrigins   string
	SigninRateMax int
	BodyLimit     int

	SeedDemo bool

	// RedisAddr, when set, moves rate-limit counters to Redis.
	RedisAddr string
}

func Load() Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}

	cfg := Config{
		Port:          env("PORT", "8080"),
		DBDSN:         env("DB_DSN", "storefront.db"), // sqlite file in project root
		LogFile:       os.Getenv("LOG_FILE"),
		LogLevel:      env("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        envDuration("JWT_TTL", 24*time.Hour),
		JWTIssuer:     env("JWT_ISSUER", "storefront"),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CORSOrigins:   env("CORS_ORIGINS", "*"),
		SigninRateMax: envInt("SIGNIN_RATE_MAX", 5),
		BodyLimit:     envInt("BODY_LIMIT", 1<<20),
		SeedDemo:      envBool("SEED_DEMO", false),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
	}
	if cfg.JWTSecret == "" {
		log.Printf("[config] JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s JWT_TTL=%s BCRYPT_COST=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.JWTTTL, cfg.BcryptCost)
	return cfg
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %t", key, v, def)
		return def
	}
	return b
}
