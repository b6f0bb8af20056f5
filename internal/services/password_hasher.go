package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultHashCost is the bcrypt work factor used for stored passwords.
const DefaultHashCost = 10

// PasswordHasher turns plaintext passwords into salted one-way digests and
// checks candidates against them.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher hashes with bcrypt. At most `workers` hashes run at once;
// further callers wait for a free slot.
type BcryptHasher struct {
	cost int
	pool *semaphore.Weighted
}

// NewBcryptHasher creates a BcryptHasher with the given cost and pool size.
func NewBcryptHasher(cost, workers int) *BcryptHasher {
	if workers < 1 {
		workers = 1
	}
	return &BcryptHasher{
		cost: cost,
		pool: semaphore.NewWeighted(int64(workers)),
	}
}

// Hash returns a bcrypt digest of plaintext. Two calls with the same input
// yield different digests.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for hash worker: %w", err)
	}
	defer h.pool.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests never
// match.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
