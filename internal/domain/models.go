package domain

import "github.com/shopspring/decimal"

func init() {
	// prices and totals are JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt,omitempty"`
}

type CartStatus string

const (
	CartPending CartStatus = "PENDING"
	CartPaid    CartStatus = "PAID"
)

type Cart struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"userId"`
	Status    CartStatus      `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
	UpdatedAt string          `db:"updated_at" json:"updatedAt,omitempty"`
	Items     []CartLine      `db:"-" json:"cartItems"`
}

// CartItem is a stored line item.
type CartItem struct {
	ID        string `db:"id" json:"id"`
	CartID    string `db:"cart_id" json:"cartId"`
	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

// CartLine is a line item expanded with the product it points at.
type CartLine struct {
	ID       string      `json:"id"`
	Quantity int         `json:"quantity"`
	Product  LineProduct `json:"product"`
}

type LineProduct struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}
