package handlers

import (
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Users *services.UserService
}

func userID(c *fiber.Ctx, param string) (string, error) {
	id, ok := validate.ID(c.Params(param))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": param})
		return "", fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	return id, nil
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in services.NewUser
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.Users.Create(c.UserContext(), in)
	if err != nil {
		applog.Security(c, "user.create.fail", map[string]any{"email": in.Email, "reason": err.Error()})
		return err
	}
	applog.Audit(c, "user.create", map[string]any{"user": u.ID, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully", "user": u})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Users retrieved successfully", "users": users})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := userID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User retrieved successfully", "user": u})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := userID(c, "id")
	if err != nil {
		return err
	}
	var in services.UserPatch
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.Users.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	fields := map[string]any{"user": u.ID}
	if in.Role != nil {
		fields["role"] = u.Role
	}
	applog.Audit(c, "user.update", fields)
	return c.JSON(u)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := userID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Users.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	applog.Audit(c, "user.delete", map[string]any{"user": u.ID})
	return c.JSON(fiber.Map{"message": "User deleted successfully", "user": u})
}
