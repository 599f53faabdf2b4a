package repos

import (
	"context"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ q sqlx.ExtContext }

func NewUserRepo(q sqlx.ExtContext) *UserRepo { return &UserRepo{q: q} }

const userCols = `id,email,password_hash,role,created_at,COALESCE(updated_at,'') AS updated_at`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.q, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+userCols+` FROM users ORDER BY created_at, email`)
	return out, err
}

func (r *UserRepo) Create(ctx context.Context, email, hash string, role domain.Role) (*domain.User, error) {
	u := domain.User{ID: uuid.NewString(), Email: email, Hash: hash, Role: role, CreatedAt: now()}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users(id,email,password_hash,role,created_at)
		VALUES(?,?,?,?,?)
	`, u.ID, u.Email, u.Hash, u.Role, u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update writes email, hash and role of u back to its row.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = now()
	_, err := r.q.ExecContext(ctx, `
		UPDATE users SET email=?, password_hash=?, role=?, updated_at=? WHERE id=?
	`, u.Email, u.Hash, u.Role, u.UpdatedAt, u.ID)
	return err
}

// Delete removes the user; carts and their items go with it through ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	return err
}
