package repos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"storefront/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer, and an in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'CUSTOMER' CHECK (role IN ('ADMIN','CUSTOMER')),
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  -- money is decimal text so it round-trips exactly
  price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','PAID')),
  total TEXT NOT NULL DEFAULT '0' CHECK (CAST(total AS REAL) >= 0),
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_carts_user ON carts(user_id);
-- at most one PENDING cart per user
CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_one_pending ON carts(user_id) WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS cart_items(
  id TEXT PRIMARY KEY,
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TEXT NOT NULL,
  updated_at TEXT,
  UNIQUE (cart_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_product ON cart_items(product_id);
`
	_, err := db.Exec(schema)
	return err
}

// InTx runs fn inside one transaction, committing only when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// tsLayout has fixed-width fractional seconds so timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string { return time.Now().UTC().Format(tsLayout) }

// SeedCatalog inserts a few demo products when the catalog is empty.
func SeedCatalog(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo products")

	type p struct {
		title, desc string
		price       string
		stock       int
	}
	demo := []p{
		{"Ceramic Mug", "Hand-glazed stoneware mug, 350ml", "24.90", 40},
		{"Linen Tote Bag", "Natural linen, reinforced handles", "39.00", 25},
		{"Scented Candle", "Soy wax, cedar and vanilla", "18.50", 60},
	}
	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, d := range demo {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO products(id,title,description,price,stock,created_at)
				VALUES(?,?,?,?,?,?)
			`, uuid.NewString(), d.title, d.desc, decimal.RequireFromString(d.price), d.stock, now()); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedAdmin ensures an ADMIN account with the given email exists, with its PENDING cart (idempotent).
func SeedAdmin(ctx context.Context, db *sqlx.DB, email, hash string) error {
	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		users := NewUserRepo(tx)
		if _, err := users.ByEmail(ctx, email); err == nil {
			return nil
		}
		u, err := users.Create(ctx, email, hash, domain.RoleAdmin)
		if err != nil {
			return err
		}
		_, err = NewCartRepo(tx).Create(ctx, u.ID)
		return err
	})
}
