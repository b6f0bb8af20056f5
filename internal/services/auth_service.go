package services

import (
	"context"
	"errors"
	"sync"

	"usermanager/internal/models"
	"usermanager/internal/repositories"
)

// AuthService checks email and password pairs against stored hashes.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Authenticate returns the principal for valid credentials. Unknown emails,
// soft-deleted accounts and wrong passwords all return nil without an error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.Principal, error) {
	user, err := s.userRepo.FindByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Spend the same bcrypt work as a wrong password would.
			s.hasher.Verify(password, s.unknownUserHash())
			return nil, nil
		}
		return nil, infraError("authenticate", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, nil
	}

	return user.Principal(), nil
}

// unknownUserHash returns a digest no submitted password matches, computed
// once with the hasher's own cost.
func (s *AuthService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(context.Background(), "unknown-user-placeholder")
	})
	return s.dummyHash
}
