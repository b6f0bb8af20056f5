package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"usermanager/internal/models"
	"usermanager/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"
)

// Password length bounds, in characters.
const (
	MinPasswordLength = 5
	MaxPasswordLength = 50
)

// MaxPasswordBytes is the most input bcrypt accepts.
const MaxPasswordBytes = 72

const (
	msgPasswordLength = "Password length should be between 5-50"
	msgPasswordBytes  = "Password must not exceed 72 bytes"
	msgEmailTaken     = "The email is already registered"
)

// EventPublisher delivers lifecycle events to a broker.
type EventPublisher interface {
	Publish(messageType string, payload interface{}) error
}

// UserService handles the user lifecycle: creation, lookup, partial updates,
// soft deletion and permanent deletion.
type UserService struct {
	repo      repositories.UserRepository
	hasher    PasswordHasher
	publisher EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates a new UserService. publisher may be nil, in which
// case no events are sent.
func NewUserService(repo repositories.UserRepository, hasher PasswordHasher, publisher EventPublisher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		validate:  newValidator(),
		logger:    logger,
	}
}

// CreateUser validates the input, hashes the password and stores the user.
// The password bound is checked before anything else touches the input.
func (s *UserService) CreateUser(ctx context.Context, input models.CreateUserInput) (*models.User, error) {
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, input.Email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, infraError("create user", err)
	}

	user := &models.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Password:    digest,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, newValidationError(msgEmailTaken)
		}
		return nil, infraError("create user", err)
	}

	s.publish(models.EventUserCreated, user)
	return user.Sanitized(), nil
}

// GetAllUsers returns every active user. An empty store yields an empty slice.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, infraError("list users", err)
	}
	clean := make([]models.User, 0, len(users))
	for i := range users {
		clean = append(clean, *users[i].Sanitized())
	}
	return clean, nil
}

// GetUserByID returns an active user, or nil if none matches.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil
		}
		return nil, infraError("get user", err)
	}
	return user.Sanitized(), nil
}

// UpdateUser merges the supplied fields into an active user. It returns nil
// when no active user matches. A supplied password is re-hashed.
func (s *UserService) UpdateUser(ctx context.Context, id uint, input models.UpdateUserInput) (*models.User, error) {
	existing, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil
		}
		return nil, infraError("update user", err)
	}

	if input.Password != nil {
		if err := checkPassword(*input.Password); err != nil {
			return nil, err
		}
	}
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}

	changes := models.UserChanges{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
	}
	if input.Email != nil && *input.Email != existing.Email {
		if err := s.ensureEmailAvailable(ctx, *input.Email); err != nil {
			return nil, err
		}
		changes.Email = input.Email
	}
	if input.Password != nil {
		digest, err := s.hasher.Hash(ctx, *input.Password)
		if err != nil {
			return nil, infraError("update user", err)
		}
		changes.PasswordHash = &digest
	}

	if changes.IsEmpty() {
		return existing.Sanitized(), nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, nil
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, newValidationError(msgEmailTaken)
		}
		return nil, infraError("update user", err)
	}

	s.publish(models.EventUserUpdated, updated)
	return updated.Sanitized(), nil
}

// SoftDeleteUser marks an active user as deleted. It reports false when no
// active user matches, including a user that is already soft-deleted.
func (s *UserService) SoftDeleteUser(ctx context.Context, id uint) (bool, error) {
	user, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, infraError("soft delete user", err)
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, infraError("soft delete user", err)
	}

	s.publish(models.EventUserDeleted, user)
	return true, nil
}

// ForceDeleteUser permanently removes a user, active or soft-deleted. It
// reports false when no row matches.
func (s *UserService) ForceDeleteUser(ctx context.Context, id uint) (bool, error) {
	user, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, infraError("force delete user", err)
	}

	if err := s.repo.HardDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, infraError("force delete user", err)
	}

	s.publish(models.EventUserForceDelete, user)
	return true, nil
}

// ensureEmailAvailable looks at soft-deleted rows too; only a force delete
// frees an email.
func (s *UserService) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email, true)
	switch {
	case err == nil:
		return newValidationError(msgEmailTaken)
	case errors.Is(err, repositories.ErrUserNotFound):
		return nil
	default:
		return infraError("check email", err)
	}
}

func (s *UserService) validateStruct(input interface{}) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return newValidationError(err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg := fieldMessage(e)
		fields[e.Field()] = msg
		messages = append(messages, msg)
	}
	return &ValidationError{
		Message: strings.Join(messages, "; "),
		Fields:  fields,
	}
}

func (s *UserService) publish(eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}
	event := models.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		s.logger.Warn("failed to publish user event",
			zap.String("type", eventType),
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func checkPassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return newValidationError(msgPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return newValidationError(msgPasswordBytes)
	}
	return nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Names made only of whitespace count as empty.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

func fieldMessage(e validator.FieldError) string {
	switch e.Field() {
	case "firstName":
		return "FirstName field cannot be empty"
	case "lastName":
		return "LastName field cannot be empty"
	case "email":
		if e.Tag() == "required" {
			return "Email cannot be empty"
		}
		return "Provide a valid email"
	case "phoneNumber":
		if e.Tag() == "number" {
			return "Phone number must contain only numeric characters"
		}
		return "Phone number must be between 8 and 15 characters"
	}
	return "Field '" + e.Field() + "' failed on the '" + e.Tag() + "' tag"
}
