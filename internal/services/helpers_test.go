package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	db      *sqlx.DB
	users   *services.UserService
	auth    *services.AuthService
	catalog *services.CatalogService
	cart    *services.CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	tokens := services.NewTokenManager("test-secret", time.Hour, "storefront")
	return &fixture{
		db:      db,
		users:   services.NewUserService(db, bcrypt.MinCost),
		auth:    services.NewAuthService(db, tokens),
		catalog: services.NewCatalogService(db),
		cart:    services.NewCartService(db),
	}
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), services.NewUser{Email: email, Password: "secret#123"})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (f *fixture) product(t *testing.T, title string, price int64, stock int) *domain.Product {
	t.Helper()
	pr := decimal.NewFromInt(price)
	p, err := f.catalog.Create(context.Background(), services.ProductFields{Title: &title, Price: &pr, Stock: &stock})
	if err != nil {
		t.Fatalf("create product %s: %v", title, err)
	}
	return p
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.catalog.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Stock
}

func (f *fixture) pendingCount(t *testing.T, userID string) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, `SELECT COUNT(*) FROM carts WHERE user_id=? AND status='PENDING'`, userID); err != nil {
		t.Fatalf("count pending: %v", err)
	}
	return n
}

// wantKind fails unless err is a service error of kind with message msg.
func wantKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var se *services.Error
	if !errors.As(err, &se) || se.Message != msg {
		t.Fatalf("expected message %q, got %v", msg, err)
	}
}
