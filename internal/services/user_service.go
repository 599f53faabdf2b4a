package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	db   *sqlx.DB
	cost int
}

func NewUserService(db *sqlx.DB, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{db: db, cost: bcryptCost}
}

type NewUser struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UserPatch carries the fields of a partial update; nil means unchanged.
type UserPatch struct {
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *domain.Role `json:"role"`
}

func (s *UserService) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func checkPassword(p string) error {
	if p == "" {
		return badRequest("Password is required")
	}
	if !validate.Password(p) {
		return badRequest("Password must be at least 8 characters long and contain at least 1 number and 1 symbol")
	}
	return nil
}

// Create registers a user and opens their first PENDING cart in the same transaction.
func (s *UserService) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, badRequest("Email is required")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, badRequest("Invalid email")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, badRequest("Role must be one of ADMIN, CUSTOMER")
	}
	hash, err := s.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var u *domain.User
	err = repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		if _, err := users.ByEmail(ctx, email); err == nil {
			return badRequest("Email already in use")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		created, err := users.Create(ctx, email, hash, role)
		if err != nil {
			if repos.IsUniqueViolation(err) {
				return badRequest("Email already in use")
			}
			return err
		}
		if _, err := repos.NewCartRepo(tx).Create(ctx, created.ID); err != nil {
			return err
		}
		u = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return repos.NewUserRepo(s.db).List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repos.NewUserRepo(s.db).ByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "User not found")
	}
	return u, nil
}

// Update applies a partial change. Changing a role requires an ADMIN caller in ctx.
func (s *UserService) Update(ctx context.Context, id string, p UserPatch) (*domain.User, error) {
	if p.Role != nil {
		if err := Authorize(ctx, domain.RoleAdmin); err != nil {
			return nil, forbidden("Only admins can change roles")
		}
		if !p.Role.Valid() {
			return nil, badRequest("Role must be one of ADMIN, CUSTOMER")
		}
	}
	var email, hash string
	if p.Email != nil {
		e, ok := validate.Email(*p.Email)
		if !ok {
			return nil, badRequest("Invalid email")
		}
		email = e
	}
	if p.Password != nil {
		if err := checkPassword(*p.Password); err != nil {
			return nil, err
		}
		h, err := s.Hash(*p.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var u *domain.User
	err := repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		cur, err := users.ByID(ctx, id)
		if err != nil {
			return lookup(err, "User not found")
		}
		if email != "" {
			other, err := users.ByEmail(ctx, email)
			switch {
			case err == nil && other.ID != cur.ID:
				return badRequest("Email already in use")
			case err != nil && !errors.Is(err, sql.ErrNoRows):
				return err
			}
			cur.Email = email
		}
		if hash != "" {
			cur.Hash = hash
		}
		if p.Role != nil {
			cur.Role = *p.Role
		}
		if err := users.Update(ctx, cur); err != nil {
			if repos.IsUniqueViolation(err) {
				return badRequest("Email already in use")
			}
			return err
		}
		u = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. Units held in their PENDING cart go back to stock first.
func (s *UserService) Delete(ctx context.Context, id string) (*domain.User, error) {
	var u *domain.User
	err := repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users, carts, prods := repos.NewUserRepo(tx), repos.NewCartRepo(tx), repos.NewProductRepo(tx)
		cur, err := users.ByID(ctx, id)
		if err != nil {
			return lookup(err, "User not found")
		}
		cart, err := carts.Pending(ctx, id)
		switch {
		case err == nil:
			lines, err := carts.Lines(ctx, cart.ID)
			if err != nil {
				return err
			}
			for _, l := range lines {
				if err := prods.IncrementStock(ctx, l.Product.ID, l.Quantity); err != nil {
					return err
				}
			}
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		if err := users.Delete(ctx, id); err != nil {
			return err
		}
		u = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
