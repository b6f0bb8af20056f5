package handlers

import (
	"strconv"

	"usermanager/internal/middleware"
	"usermanager/internal/models"
	"usermanager/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the user routes. Creation is public; everything
// else passes through authRequired first.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", authRequired, h.HandleGetUsers)
	userRoutes.Get("/:id", authRequired, h.HandleGetUserByID)
	userRoutes.Put("/:id", authRequired, h.HandleUpdateUser)
	userRoutes.Delete("/:id", authRequired, h.HandleSoftDeleteUser)
	userRoutes.Delete("/:id/force", authRequired, h.HandleForceDeleteUser)
}

// HandleCreateUser creates a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var input models.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	user, err := h.service.CreateUser(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUsers lists all active users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "list users", err)
	}
	return c.JSON(users)
}

// HandleGetUserByID retrieves a single active user.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return notFound(c)
	}

	user, err := h.service.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "get user", err)
	}
	if user == nil {
		return notFound(c)
	}
	return c.JSON(user)
}

// HandleUpdateUser applies a partial update to an active user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return notFound(c)
	}

	var input models.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	user, err := h.service.UpdateUser(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, "update user", err)
	}
	if user == nil {
		return notFound(c)
	}
	return c.JSON(user)
}

// HandleSoftDeleteUser marks a user as deleted.
func (h *UserHandler) HandleSoftDeleteUser(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return notFound(c)
	}

	deleted, err := h.service.SoftDeleteUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "soft delete user", err)
	}
	if !deleted {
		return notFound(c)
	}
	h.logDeletion(c, "user soft deleted", id)
	return c.JSON(fiber.Map{"message": "User soft deleted"})
}

// HandleForceDeleteUser permanently removes a user.
func (h *UserHandler) HandleForceDeleteUser(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return notFound(c)
	}

	deleted, err := h.service.ForceDeleteUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "force delete user", err)
	}
	if !deleted {
		return notFound(c)
	}
	h.logDeletion(c, "user force deleted", id)
	return c.JSON(fiber.Map{"message": "User hard/force deleted"})
}

// logDeletion records which authenticated user removed an account.
func (h *UserHandler) logDeletion(c *fiber.Ctx, msg string, id uint) {
	fields := []zap.Field{zap.Uint("user_id", id)}
	if actor, ok := middleware.CurrentPrincipal(c); ok {
		fields = append(fields, zap.Uint("actor_id", actor.ID))
	}
	h.logger.Info(msg, fields...)
}

// userID parses the :id route parameter. Anything that is not a positive
// integer cannot name a stored user.
func userID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
