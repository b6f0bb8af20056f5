// Package server assembles the Fiber application from its services.
package server

import (
	"errors"
	"time"

	"usermanager/internal/handlers"
	"usermanager/internal/middleware"
	"usermanager/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	UserService  *services.UserService
	AuthService  *services.AuthService
	TokenService *services.TokenService
	Logger       *zap.Logger
	// RequestLog enables Fiber's access log middleware.
	RequestLog bool
}

// New builds the Fiber app with all routes mounted under /api.
func New(deps Deps) *fiber.App {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if deps.RequestLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(deps.TokenService, log)

	handlers.NewAuthHandler(deps.AuthService, deps.TokenService, log).RegisterRoutes(api)
	handlers.NewUserHandler(deps.UserService, log).RegisterRoutes(api, authRequired)

	return app
}

// errorHandler renders errors that escape handlers, such as unknown routes
// and recovered panics, as JSON.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}
