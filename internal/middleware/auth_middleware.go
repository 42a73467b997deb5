package middleware

import (
	"tastebud/internal/apperr"
	"tastebud/internal/models"
	"tastebud/internal/services"

	"github.com/gofiber/fiber/v2"
)

// identityKey is where AuthRequired parks the resolved identity for
// downstream handlers.
const identityKey = "identity"

// AuthRequired resolves the Authorization header to an identity and stores
// it in the request context. Anything short of a known token fails with 401.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authService.Authenticate(c.Get("Authorization"))
		if err != nil {
			return reject(c, err)
		}
		c.Locals(identityKey, user)
		return c.Next()
	}
}

// TierRequired gates a route on a minimum privilege tier. It must run after
// AuthRequired on the same route.
func TierRequired(authService *services.AuthService, min models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(identityKey).(*models.User)
		if !ok {
			return reject(c, apperr.ErrInvalidToken)
		}
		if err := authService.Authorize(user, min); err != nil {
			return reject(c, err)
		}
		return c.Next()
	}
}

// Identity returns the authenticated user stored by AuthRequired, or nil on
// routes that never passed through it.
func Identity(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(identityKey).(*models.User)
	return user
}

func reject(c *fiber.Ctx, err error) error {
	e := apperr.Coerce(err)
	return c.Status(e.Kind.Status()).JSON(fiber.Map{
		"status":  "error",
		"message": e.Message,
	})
}
