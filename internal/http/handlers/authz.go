package handlers

import (
	"strings"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Access declares who may call a route.
type Access struct {
	Public bool
	Roles  []domain.Role
}

// Public routes skip token verification entirely.
var Public = Access{Public: true}

// Authenticated requires a valid token and nothing else.
func Authenticated() Access { return Access{} }

// Roles requires a valid token whose role is one of roles.
func Roles(roles ...domain.Role) Access { return Access{Roles: roles} }

// Guard authenticates the bearer token and authorizes it against a.
// The verified identity travels in c.UserContext().
func Guard(auth *services.AuthService, a Access) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.Public {
			return c.Next()
		}
		ctx, id, err := auth.Authenticate(c.UserContext(), bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			applog.Security(c, "auth.token.reject", map[string]any{"reason": err.Error()})
			return err
		}
		c.SetUserContext(ctx)
		c.Locals("user_id", id.UserID)

		if err := services.Authorize(ctx, a.Roles...); err != nil {
			applog.Security(c, "access.denied", map[string]any{"required": a.Roles, "role": id.Role})
			return err
		}
		return c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>", or returns "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}
