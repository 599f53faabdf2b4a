package services

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	db *sqlx.DB
}

func NewCatalogService(db *sqlx.DB) *CatalogService {
	return &CatalogService{db: db}
}

// MaxPrice is the exclusive upper bound for a product price.
var MaxPrice = decimal.New(1, 12)

// ProductFields is both the create body and the partial update body; nil means absent.
type ProductFields struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

// apply validates the present fields and copies them onto p.
func (f ProductFields) apply(p *domain.Product) error {
	if f.Title != nil {
		t, ok := validate.Title(*f.Title)
		if !ok {
			if strings.TrimSpace(*f.Title) == "" {
				return badRequest("Title is required")
			}
			return badRequest("Title must be less or equal to 50 characters")
		}
		p.Title = t
	}
	if f.Description != nil {
		if !validate.Description(*f.Description) {
			return badRequest("Description must be less or equal to 500 characters")
		}
		d := *f.Description
		p.Description = &d
	}
	if f.Price != nil {
		if f.Price.IsNegative() {
			return badRequest("Price must not be negative")
		}
		if f.Price.GreaterThanOrEqual(MaxPrice) {
			return badRequest("Price must be less than 1000000000000")
		}
		if !f.Price.Equal(f.Price.Round(2)) {
			return badRequest("Price must have at most 2 decimal places")
		}
		p.Price = *f.Price
	}
	if f.Stock != nil {
		if *f.Stock < 0 {
			return badRequest("Stock must not be negative")
		}
		p.Stock = *f.Stock
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, f ProductFields) (*domain.Product, error) {
	if f.Title == nil {
		return nil, badRequest("Title is required")
	}
	if f.Price == nil {
		return nil, badRequest("Price is required")
	}
	p := &domain.Product{}
	if err := f.apply(p); err != nil {
		return nil, err
	}
	if err := repos.NewProductRepo(s.db).Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every product; an empty catalog is reported as NotFound.
func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	out, err := repos.NewProductRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, notFound("No products found")
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := repos.NewProductRepo(s.db).Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, f ProductFields) (*domain.Product, error) {
	var p *domain.Product
	err := repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		prods := repos.NewProductRepo(tx)
		cur, err := prods.Get(ctx, id)
		if err != nil {
			return lookup(err, "Product not found")
		}
		if err := f.apply(cur); err != nil {
			return err
		}
		if err := prods.Update(ctx, cur); err != nil {
			return err
		}
		p = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product that no cart line refers to.
func (s *CatalogService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	var p *domain.Product
	err := repos.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		prods := repos.NewProductRepo(tx)
		cur, err := prods.Get(ctx, id)
		if err != nil {
			return lookup(err, "Product not found")
		}
		used, err := prods.Referenced(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return badRequest("Product is referenced by a cart")
		}
		if err := prods.Delete(ctx, id); err != nil {
			return err
		}
		p = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
