package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/services"
)

func TestSignInIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "kate@example.com")

	res, err := f.auth.SignIn(ctx, "kate@example.com", "secret#123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.User.ID != u.ID || res.AccessToken == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	authCtx, id, err := f.auth.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != u.ID || id.Email != u.Email || id.Role != domain.RoleCustomer {
		t.Fatalf("identity mismatch: %+v", id)
	}
	if got, ok := services.IdentityFrom(authCtx); !ok || got != id {
		t.Fatalf("identity not on context: %+v", got)
	}
}

func TestSignInFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "liam@example.com")

	_, err := f.auth.SignIn(ctx, "liam@example.com", "wrong#pass1")
	wantKind(t, err, services.ErrUnauthorized, "Invalid password")
	_, err = f.auth.SignIn(ctx, "nobody@example.com", "secret#123")
	wantKind(t, err, services.ErrNotFound, "User not found")
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "mia@example.com")

	_, _, err := f.auth.Authenticate(ctx, "")
	wantKind(t, err, services.ErrUnauthorized, "Token is required")
	_, _, err = f.auth.Authenticate(ctx, "not.a.token")
	wantKind(t, err, services.ErrUnauthorized, "Token is invalid or expired")

	expired, err := services.NewTokenManager("test-secret", -time.Minute, "storefront").Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = f.auth.Authenticate(ctx, expired)
	wantKind(t, err, services.ErrUnauthorized, "Token is invalid or expired")

	foreign, err := services.NewTokenManager("other-secret", time.Hour, "storefront").Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = f.auth.Authenticate(ctx, foreign)
	wantKind(t, err, services.ErrUnauthorized, "Token is invalid or expired")
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	if err := services.Authorize(ctx); err != nil {
		t.Fatalf("no roles required: %v", err)
	}
	wantKind(t, services.Authorize(ctx, domain.RoleAdmin), services.ErrForbidden, "Forbidden resource")

	customer := services.WithIdentity(ctx, domain.Identity{UserID: "u1", Role: domain.RoleCustomer})
	wantKind(t, services.Authorize(customer, domain.RoleAdmin), services.ErrForbidden, "Forbidden resource")
	if err := services.Authorize(customer, domain.RoleAdmin, domain.RoleCustomer); err != nil {
		t.Fatalf("customer allowed by role list: %v", err)
	}
}
