package services

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CartService runs the cart workflow. Every mutation is one transaction, so a failure
// part-way leaves stock, line items and totals exactly as they were.
type CartService struct {
	db *sqlx.DB
}

func NewCartService(db *sqlx.DB) *CartService {
	return &CartService{db: db}
}

// pendingCart resolves the user and their PENDING cart, in that order.
func pendingCart(ctx context.Context, q sqlx.ExtContext, userID string) (*domain.Cart, error) {
	if _, err := repos.NewUserRepo(q).ByID(ctx, userID); err != nil {
		return nil, lookup(err, "User not found")
	}
	cart, err := repos.NewCartRepo(q).Pending(ctx, userID)
	if err != nil {
		return nil, lookup(err, "Cart not found")
	}
	return cart, nil
}

// Current returns the user's PENDING cart with its line items.
func (s *CartService) Current(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := pendingCart(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	lines, err := repos.NewCartRepo(s.db).Lines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = lines
	return cart, nil
}

// History returns every cart the user has had, newest first, each with its line items.
func (s *CartService) History(ctx context.Context, userID string) ([]domain.Cart, error) {
	if _, err := repos.NewUserRepo(s.db).ByID(ctx, userID); err != nil {
		return nil, lookup(err, "User not found")
	}
	carts := repos.NewCartRepo(s.db)
	out, err := carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := carts.Lines(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = lines
	}
	return out, nil
}

// AddProduct reserves qty units of the product and adds them to the user's PENDING cart.
// Adding a product already in the cart accumulates its quantity.
func (s *CartService) AddProduct(ctx context.Context, userID, productID string, qty int) (*domain.CartItem, error) {
	if qty < 1 {
		return nil, badRequest("Quantity must be greater than 0")
	}
	var item *domain.CartItem
	err := repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cart, err := pendingCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		carts, prods := repos.NewCartRepo(tx), repos.NewProductRepo(tx)
		p, err := prods.Get(ctx, productID)
		if err != nil {
			return lookup(err, "Product not found")
		}
		if p.Stock < qty {
			return badRequest("Insufficient stock")
		}
		ok, err := prods.DecrementStock(ctx, productID, qty)
		if err != nil {
			return err
		}
		if !ok {
			return badRequest("Insufficient stock")
		}

		existing, err := carts.FindItem(ctx, cart.ID, productID)
		switch {
		case err == nil:
			if err := carts.SetItemQuantity(ctx, existing, existing.Quantity+qty); err != nil {
				return err
			}
			item = existing
		case errors.Is(err, sql.ErrNoRows):
			if item, err = carts.CreateItem(ctx, cart.ID, productID, qty); err != nil {
				return err
			}
		default:
			return err
		}

		total := cart.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
		return carts.SetTotal(ctx, cart.ID, total)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveProduct drops the product's whole line from the user's PENDING cart and
// returns its units to stock.
func (s *CartService) RemoveProduct(ctx context.Context, userID, productID string) error {
	return repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cart, err := pendingCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		carts, prods := repos.NewCartRepo(tx), repos.NewProductRepo(tx)
		p, err := prods.Get(ctx, productID)
		if err != nil {
			return lookup(err, "Product not found")
		}
		line, err := carts.FindItem(ctx, cart.ID, productID)
		if err != nil {
			return lookup(err, "Product not found in cart")
		}
		if err := prods.IncrementStock(ctx, productID, line.Quantity); err != nil {
			return err
		}
		if err := carts.DeleteItem(ctx, line.ID); err != nil {
			return err
		}

		total := cart.Total.Sub(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if total.IsNegative() {
			// the price went up after the line was added
			total = decimal.Zero
		}
		return carts.SetTotal(ctx, cart.ID, total)
	})
}

// Checkout marks a PENDING cart PAID and opens a fresh PENDING cart for its owner,
// both in one transaction. It returns the id of the new cart.
func (s *CartService) Checkout(ctx context.Context, cartID string) (string, error) {
	var next string
	err := repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		cart, err := carts.ByID(ctx, cartID)
		if err != nil {
			return lookup(err, "Cart not found")
		}
		if cart.Status != domain.CartPending {
			return badRequest("Cart is not pending")
		}
		ok, err := carts.MarkPaid(ctx, cart.ID)
		if err != nil {
			return err
		}
		if !ok {
			return badRequest("Cart is not pending")
		}
		fresh, err := carts.Create(ctx, cart.UserID)
		if err != nil {
			return err
		}
		next = fresh.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return next, nil
}
