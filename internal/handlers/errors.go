package handlers

import (
	"errors"

	"usermanager/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgUserNotFound  = "User not found"
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
)

// respondError maps service errors onto HTTP responses. Only unexpected
// failures are logged; their detail never reaches the client.
func respondError(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body := fiber.Map{"message": verr.Message}
		if len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	logger.Error(op+" failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": msgInternalError,
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": msgUserNotFound,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": msg,
	})
}
