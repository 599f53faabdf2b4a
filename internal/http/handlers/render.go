package handlers

import (
	"errors"

	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type errorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(kind, services.ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(kind, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(kind, services.ErrForbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every failure as {message, error, statusCode}.
// Server errors are logged and replaced by a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := ""
	var se *services.Error
	var fe *fiber.Error
	switch {
	case errors.As(err, &se):
		code, msg = statusFor(se.Kind), se.Message
	case errors.As(err, &fe):
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		msg = "Internal server error"
	}
	return c.Status(code).JSON(errorBody{Message: msg, Error: utils.StatusMessage(code), StatusCode: code})
}

// result classifies err for metrics labels.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	case errors.Is(err, services.ErrBadRequest):
		return "bad_request"
	}
	return "error"
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": "body"})
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}
