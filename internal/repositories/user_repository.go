package repositories

import (
	"context"
	"errors"

	"usermanager/internal/models"
)

var (
	// ErrUserNotFound is returned when no row matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the unique email constraint is violated.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user data access.
//
// Lookups exclude soft-deleted rows unless includeDeleted is set. Email
// uniqueness covers soft-deleted rows as well.
type UserRepository interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uint, includeDeleted bool) (*models.User, error)
	FindByEmail(ctx context.Context, email string, includeDeleted bool) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, changes models.UserChanges) (*models.User, error)
	SoftDelete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
}
