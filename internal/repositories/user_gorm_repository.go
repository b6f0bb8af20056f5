package repositories

import (
	"context"
	"errors"
	"fmt"

	"usermanager/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique index
// violations surface as gorm.ErrDuplicatedKey.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

func (r *GORMUserRepository) scoped(ctx context.Context, includeDeleted bool) *gorm.DB {
	db := r.db.WithContext(ctx)
	if includeDeleted {
		db = db.Unscoped()
	}
	return db
}

// FindAll retrieves all active users. The password column is not selected.
func (r *GORMUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Omit("password").Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// FindByID retrieves a user by their ID.
func (r *GORMUserRepository) FindByID(ctx context.Context, id uint, includeDeleted bool) (*models.User, error) {
	var user models.User
	if err := r.scoped(ctx, includeDeleted).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email.
func (r *GORMUserRepository) FindByEmail(ctx context.Context, email string, includeDeleted bool) (*models.User, error) {
	var user models.User
	if err := r.scoped(ctx, includeDeleted).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a new user; the ID is assigned by the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update applies the supplied changes to an active user and returns the
// stored result.
func (r *GORMUserRepository) Update(ctx context.Context, id uint, changes models.UserChanges) (*models.User, error) {
	fields := changeColumns(changes)
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateEmail
			}
			return nil, fmt.Errorf("failed to update user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return r.FindByID(ctx, id, false)
}

// SoftDelete sets the deletion marker on an active user.
func (r *GORMUserRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to soft delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// HardDelete permanently removes a user regardless of its deletion marker.
func (r *GORMUserRepository) HardDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to hard delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func changeColumns(c models.UserChanges) map[string]interface{} {
	fields := make(map[string]interface{})
	if c.FirstName != nil {
		fields["first_name"] = *c.FirstName
	}
	if c.LastName != nil {
		fields["last_name"] = *c.LastName
	}
	if c.Email != nil {
		fields["email"] = *c.Email
	}
	if c.PhoneNumber != nil {
		fields["phone_number"] = *c.PhoneNumber
	}
	if c.PasswordHash != nil {
		fields["password"] = *c.PasswordHash
	}
	return fields
}
