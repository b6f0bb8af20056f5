package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account managed by the service.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	FirstName   string         `json:"firstName" gorm:"type:varchar(255);not null"`
	LastName    string         `json:"lastName" gorm:"type:varchar(255);not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PhoneNumber *string        `json:"phoneNumber" gorm:"type:varchar(15)"`
	Password    string         `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Sanitized returns a copy of the user without the password hash or the
// soft-delete marker.
func (u *User) Sanitized() *User {
	clean := *u
	clean.Password = ""
	clean.DeletedAt = gorm.DeletedAt{}
	return &clean
}

// Principal returns the identity subset embedded in session tokens.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// Principal is the authenticated identity of a caller.
type Principal struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// CreateUserInput is the request body for creating a user.
type CreateUserInput struct {
	FirstName   string  `json:"firstName" validate:"required,notblank"`
	LastName    string  `json:"lastName" validate:"required,notblank"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,number,min=8,max=15"`
	Password    string  `json:"password"` // length checked before validation
}

// UpdateUserInput is the request body for a partial update. Nil fields are
// left untouched.
type UpdateUserInput struct {
	FirstName   *string `json:"firstName" validate:"omitnil,notblank"`
	LastName    *string `json:"lastName" validate:"omitnil,notblank"`
	Email       *string `json:"email" validate:"omitnil,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,number,min=8,max=15"`
	Password    *string `json:"password"`
}

// UserChanges is a partial update applied by a repository.
type UserChanges struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PhoneNumber  *string
	PasswordHash *string
}

// IsEmpty reports whether no field is set.
func (c UserChanges) IsEmpty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Email == nil &&
		c.PhoneNumber == nil && c.PasswordHash == nil
}
