package repos

import (
	"context"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ q sqlx.ExtContext }

func NewCartRepo(q sqlx.ExtContext) *CartRepo { return &CartRepo{q: q} }

const cartCols = `id, user_id, status, total, created_at, COALESCE(updated_at,'') AS updated_at`

// Create opens a new PENDING cart with a zero total for userID.
func (r *CartRepo) Create(ctx context.Context, userID string) (*domain.Cart, error) {
	c := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.CartPending,
		Total:     decimal.Zero,
		CreatedAt: now(),
		Items:     []domain.CartLine{},
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO carts(id,user_id,status,total,created_at)
		VALUES(?,?,?,?,?)
	`, c.ID, c.UserID, c.Status, c.Total, c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepo) ByID(ctx context.Context, id string) (*domain.Cart, error) {
	var c domain.Cart
	if err := sqlx.GetContext(ctx, r.q, &c, `SELECT `+cartCols+` FROM carts WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// Pending returns the user's PENDING cart, or sql.ErrNoRows.
func (r *CartRepo) Pending(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := sqlx.GetContext(ctx, r.q, &c, `
		SELECT `+cartCols+` FROM carts WHERE user_id=? AND status='PENDING'
	`, userID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns all carts of a user, newest first. rowid breaks timestamp ties
// in insertion order.
func (r *CartRepo) ListByUser(ctx context.Context, userID string) ([]domain.Cart, error) {
	out := []domain.Cart{}
	err := sqlx.SelectContext(ctx, r.q, &out, `
		SELECT `+cartCols+` FROM carts WHERE user_id=?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	return out, err
}

type cartLineRow struct {
	ID        string          `db:"id"`
	Quantity  int             `db:"quantity"`
	ProductID string          `db:"product_id"`
	Title     string          `db:"title"`
	Price     decimal.Decimal `db:"price"`
}

// Lines returns the cart's line items expanded with product id, title and price.
func (r *CartRepo) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	var rows []cartLineRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, `
	  SELECT ci.id, ci.quantity, p.id AS product_id, p.title, p.price
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at, p.title
	`, cartID); err != nil {
		return nil, err
	}
	out := make([]domain.CartLine, 0, len(rows))
	for _, it := range rows {
		out = append(out, domain.CartLine{
			ID:       it.ID,
			Quantity: it.Quantity,
			Product:  domain.LineProduct{ID: it.ProductID, Title: it.Title, Price: it.Price},
		})
	}
	return out, nil
}

const itemCols = `id, cart_id, product_id, quantity, created_at, COALESCE(updated_at,'') AS updated_at`

// FindItem returns the line for productID in cartID, or sql.ErrNoRows.
func (r *CartRepo) FindItem(ctx context.Context, cartID, productID string) (*domain.CartItem, error) {
	var it domain.CartItem
	err := sqlx.GetContext(ctx, r.q, &it, `
		SELECT `+itemCols+` FROM cart_items WHERE cart_id=? AND product_id=?
	`, cartID, productID)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CartRepo) CreateItem(ctx context.Context, cartID, productID string, qty int) (*domain.CartItem, error) {
	it := domain.CartItem{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now(),
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO cart_items(id,cart_id,product_id,quantity,created_at)
		VALUES(?,?,?,?,?)
	`, it.ID, it.CartID, it.ProductID, it.Quantity, it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, it *domain.CartItem, qty int) error {
	ts := now()
	if _, err := r.q.ExecContext(ctx, `
		UPDATE cart_items SET quantity=?, updated_at=? WHERE id=?
	`, qty, ts, it.ID); err != nil {
		return err
	}
	it.Quantity = qty
	it.UpdatedAt = ts
	return nil
}

func (r *CartRepo) DeleteItem(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE id=?`, id)
	return err
}

func (r *CartRepo) SetTotal(ctx context.Context, id string, total decimal.Decimal) error {
	_, err := r.q.ExecContext(ctx, `UPDATE carts SET total=?, updated_at=? WHERE id=?`, total, now(), id)
	return err
}

// MarkPaid moves a PENDING cart to PAID. It returns false when the cart was not PENDING.
func (r *CartRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE carts SET status='PAID', updated_at=? WHERE id=? AND status='PENDING'
	`, now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
