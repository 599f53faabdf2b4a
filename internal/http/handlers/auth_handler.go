package handlers

import (
	"errors"

	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth    *services.AuthService
	Metrics *metrics.Metrics
}

type signInBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var in signInBody
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Email == "" || in.Password == "" {
		applog.Security(c, "auth.signin.fail", map[string]any{"reason": "missing_fields"})
		h.Metrics.SignIn("bad_request")
		return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
	}

	res, err := h.Auth.SignIn(c.UserContext(), in.Email, in.Password)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, services.ErrNotFound):
			reason = "unknown_email"
		case errors.Is(err, services.ErrUnauthorized):
			reason = "bad_password"
		}
		applog.Security(c, "auth.signin.fail", map[string]any{"email": in.Email, "reason": reason})
		h.Metrics.SignIn(reason)
		return err
	}

	c.Locals("user_id", res.User.ID)
	applog.Audit(c, "auth.signin.success", map[string]any{"email": res.User.Email})
	h.Metrics.SignIn("ok")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Signed in successfully",
		"access_token": res.AccessToken,
		"user": fiber.Map{
			"id":    res.User.ID,
			"email": res.User.Email,
			"role":  res.User.Role,
		},
	})
}
