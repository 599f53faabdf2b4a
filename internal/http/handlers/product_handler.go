package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func productID(c *fiber.Ctx, param string) (string, error) {
	id, ok := validate.ID(c.Params(param))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": param})
		return "", fiber.NewError(fiber.StatusNotFound, "Product not found")
	}
	return id, nil
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductFields
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.create", map[string]any{"product": p.ID, "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": p})
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Products retrieved successfully", "products": products})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := productID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product retrieved successfully", "product": p})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := productID(c, "id")
	if err != nil {
		return err
	}
	var in services.ProductFields
	if err := parseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Catalog.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.update", map[string]any{"product": p.ID, "stock": p.Stock, "price": p.Price.String()})
	return c.JSON(fiber.Map{"message": "Product updated successfully", "product": p})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := productID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Catalog.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "product.delete", map[string]any{"product": p.ID})
	return c.JSON(fiber.Map{"message": "Product deleted successfully", "product": p})
}
