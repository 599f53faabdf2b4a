package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart    *services.CartService
	Metrics *metrics.Metrics
}

type quantityBody struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	uid, err := userID(c, "userId")
	if err != nil {
		return err
	}
	cart, err := h.Cart.Current(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

func (h *CartHandler) History(c *fiber.Ctx) error {
	uid, err := userID(c, "userId")
	if err != nil {
		return err
	}
	carts, err := h.Cart.History(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Carts retrieved successfully", "carts": carts})
}

func (h *CartHandler) AddProduct(c *fiber.Ctx) error {
	uid, err := userID(c, "userId")
	if err != nil {
		return err
	}
	pid, err := productID(c, "productId")
	if err != nil {
		return err
	}
	var in quantityBody
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Quantity == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Quantity is required")
	}

	item, err := h.Cart.AddProduct(c.UserContext(), uid, pid, *in.Quantity)
	h.Metrics.CartOp("add", result(err))
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.add", map[string]any{"user": uid, "product": pid, "qty": *in.Quantity})
	return c.JSON(fiber.Map{"message": "Product added to cart", "cartItem": item})
}

func (h *CartHandler) RemoveProduct(c *fiber.Ctx) error {
	uid, err := userID(c, "userId")
	if err != nil {
		return err
	}
	pid, err := productID(c, "productId")
	if err != nil {
		return err
	}
	err = h.Cart.RemoveProduct(c.UserContext(), uid, pid)
	h.Metrics.CartOp("remove", result(err))
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.remove", map[string]any{"user": uid, "product": pid})
	return c.JSON(fiber.Map{"message": "Product removed from cart"})
}

func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return fiber.NewError(fiber.StatusNotFound, "Cart not found")
	}
	next, err := h.Cart.Checkout(c.UserContext(), id)
	h.Metrics.CartOp("checkout", result(err))
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.checkout", map[string]any{"cart": id, "next_cart": next})
	return c.JSON(fiber.Map{"message": "Cart checked out"})
}
