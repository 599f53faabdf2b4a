package repos

import (
	"context"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ q sqlx.ExtContext }

func NewProductRepo(q sqlx.ExtContext) *ProductRepo { return &ProductRepo{q: q} }

const productCols = `id, title, description, price, stock, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
	  SELECT `+productCols+`
	  FROM products
	  ORDER BY created_at, title
	`)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create assigns p an id and creation time and inserts it.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	p.CreatedAt = now()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products(id,title,description,price,stock,created_at)
		VALUES(?,?,?,?,?,?)
	`, p.ID, p.Title, p.Description, p.Price, p.Stock, p.CreatedAt)
	return err
}

// Update writes every mutable column of p back to its row.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = now()
	_, err := r.q.ExecContext(ctx, `
		UPDATE products SET title=?, description=?, price=?, stock=?, updated_at=? WHERE id=?
	`, p.Title, p.Description, p.Price, p.Stock, p.UpdatedAt, p.ID)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	return err
}

// Referenced reports whether any cart line item points at the product.
func (r *ProductRepo) Referenced(ctx context.Context, id string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM cart_items WHERE product_id=?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DecrementStock subtracts qty only if at least qty units are in stock.
// It returns false, without error, when there isn't enough.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?
	`, qty, now(), id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ProductRepo) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?
	`, qty, now(), id)
	return err
}
