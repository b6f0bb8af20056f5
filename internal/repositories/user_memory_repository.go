package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"usermanager/internal/models"

	"gorm.io/gorm"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It mirrors the GORM store's soft-delete and unique email semantics.
type MemoryUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

// FindAll returns all active users ordered by ID.
func (r *MemoryUserRepository) FindAll(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userList := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if u.DeletedAt.Valid {
			continue
		}
		u.Password = ""
		userList = append(userList, u)
	}
	sort.Slice(userList, func(i, j int) bool { return userList[i].ID < userList[j].ID })
	return userList, nil
}

// FindByID returns a user by its ID.
func (r *MemoryUserRepository) FindByID(_ context.Context, id uint, includeDeleted bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || (u.DeletedAt.Valid && !includeDeleted) {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// FindByEmail returns a user by its email.
func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string, includeDeleted bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if u.DeletedAt.Valid && !includeDeleted {
			return nil, ErrUserNotFound
		}
		return &u, nil
	}
	return nil, ErrUserNotFound
}

// Create adds a new user and assigns its ID.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return ErrDuplicateEmail
	}
	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

// Update modifies an active user.
func (r *MemoryUserRepository) Update(_ context.Context, id uint, changes models.UserChanges) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, ErrUserNotFound
	}
	if changes.IsEmpty() {
		return &u, nil
	}
	if changes.Email != nil && r.emailTaken(*changes.Email, id) {
		return nil, ErrDuplicateEmail
	}
	if changes.FirstName != nil {
		u.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = *changes.LastName
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.PhoneNumber != nil {
		phone := *changes.PhoneNumber
		u.PhoneNumber = &phone
	}
	if changes.PasswordHash != nil {
		u.Password = *changes.PasswordHash
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

// SoftDelete marks an active user as deleted.
func (r *MemoryUserRepository) SoftDelete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return ErrUserNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.users[id] = u
	return nil
}

// HardDelete removes a user permanently.
func (r *MemoryUserRepository) HardDelete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// emailTaken must be called with the lock held.
func (r *MemoryUserRepository) emailTaken(email string, exceptID uint) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
