package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	db     *sqlx.DB
	Tokens *TokenManager
}

func NewAuthService(db *sqlx.DB, tokens *TokenManager) *AuthService {
	return &AuthService{db: db, Tokens: tokens}
}

type SignInResult struct {
	AccessToken string
	User        *domain.User
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	u, err := repos.NewUserRepo(s.db).ByEmail(ctx, email)
	if err != nil {
		return nil, lookup(err, "User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, unauthorized("Invalid password")
	}
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &SignInResult{AccessToken: tok, User: u}, nil
}

// Authenticate verifies a bearer token and returns a context carrying its identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (context.Context, domain.Identity, error) {
	if token == "" {
		return ctx, domain.Identity{}, unauthorized("Token is required")
	}
	id, err := s.Tokens.Verify(token)
	if err != nil {
		return ctx, domain.Identity{}, err
	}
	return WithIdentity(ctx, id), id, nil
}
