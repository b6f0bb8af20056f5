package middleware

import (
	"strings"

	"usermanager/internal/models"
	"usermanager/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PrincipalKey is the fiber.Ctx locals key holding the authenticated principal.
const PrincipalKey = "principal"

const msgUnauthorized = "Invalid or expired token"

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token. Every failure gets the same response.
func AuthRequired(tokens *services.TokenService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return unauthorized(c)
		}

		principal, err := tokens.Verify(parts[1])
		if err != nil {
			logger.Debug("rejected bearer token", zap.String("path", c.Path()))
			return unauthorized(c)
		}

		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// CurrentPrincipal returns the principal stored by AuthRequired, if any.
func CurrentPrincipal(c *fiber.Ctx) (*models.Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(*models.Principal)
	return p, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": msgUnauthorized,
	})
}
