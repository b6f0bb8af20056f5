package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"usermanager/internal/models"
	"usermanager/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteRepository opens a private in-memory database per test.
func newSQLiteRepository(t *testing.T) repositories.UserRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return repositories.NewGORMUserRepository(db)
}

func forEachRepository(t *testing.T, test func(t *testing.T, repo repositories.UserRepository)) {
	t.Run("gorm", func(t *testing.T) { test(t, newSQLiteRepository(t)) })
	t.Run("memory", func(t *testing.T) { test(t, repositories.NewMemoryUserRepository()) })
}

func newUser(email string) *models.User {
	phone := "1234567890"
	return &models.User{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       email,
		PhoneNumber: &phone,
		Password:    "$2a$10$hash",
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		user := newUser("john@example.com")
		require.NoError(t, repo.Create(ctx, user))
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		byID, err := repo.FindByID(ctx, user.ID, false)
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", byID.Email)
		assert.Equal(t, "$2a$10$hash", byID.Password)

		byEmail, err := repo.FindByEmail(ctx, "john@example.com", false)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		_, err = repo.FindByID(ctx, user.ID+100, false)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		_, err = repo.FindByEmail(ctx, "nobody@example.com", true)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestUserRepository_FindAllOmitsPassword(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, newUser("a@example.com")))
		require.NoError(t, repo.Create(ctx, newUser("b@example.com")))

		users, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.Empty(t, u.Password)
		}
		assert.Less(t, users[0].ID, users[1].ID)
	})
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		first := newUser("john@example.com")
		require.NoError(t, repo.Create(ctx, first))

		err := repo.Create(ctx, newUser("john@example.com"))
		assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

		// Soft-deleted rows keep the email reserved
		require.NoError(t, repo.SoftDelete(ctx, first.ID))
		err = repo.Create(ctx, newUser("john@example.com"))
		assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

		// A hard delete frees it
		require.NoError(t, repo.HardDelete(ctx, first.ID))
		assert.NoError(t, repo.Create(ctx, newUser("john@example.com")))
	})
}

func TestUserRepository_Update(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		user := newUser("john@example.com")
		require.NoError(t, repo.Create(ctx, user))
		other := newUser("jane@example.com")
		require.NoError(t, repo.Create(ctx, other))

		name := "Johnny"
		hash := "$2a$10$newhash"
		updated, err := repo.Update(ctx, user.ID, models.UserChanges{FirstName: &name, PasswordHash: &hash})
		require.NoError(t, err)
		assert.Equal(t, "Johnny", updated.FirstName)
		assert.Equal(t, "Doe", updated.LastName)
		assert.Equal(t, hash, updated.Password)
		assert.False(t, updated.UpdatedAt.Before(user.UpdatedAt))

		taken := "jane@example.com"
		_, err = repo.Update(ctx, user.ID, models.UserChanges{Email: &taken})
		assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

		_, err = repo.Update(ctx, user.ID+100, models.UserChanges{FirstName: &name})
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)

		require.NoError(t, repo.SoftDelete(ctx, user.ID))
		_, err = repo.Update(ctx, user.ID, models.UserChanges{FirstName: &name})
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestUserRepository_SoftAndHardDelete(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		user := newUser("john@example.com")
		require.NoError(t, repo.Create(ctx, user))

		require.NoError(t, repo.SoftDelete(ctx, user.ID))
		assert.ErrorIs(t, repo.SoftDelete(ctx, user.ID), repositories.ErrUserNotFound)

		_, err := repo.FindByID(ctx, user.ID, false)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		_, err = repo.FindByEmail(ctx, user.Email, false)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)

		deleted, err := repo.FindByID(ctx, user.ID, true)
		require.NoError(t, err)
		assert.True(t, deleted.DeletedAt.Valid)
		_, err = repo.FindByEmail(ctx, user.Email, true)
		assert.NoError(t, err)

		users, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		require.NoError(t, repo.HardDelete(ctx, user.ID))
		assert.ErrorIs(t, repo.HardDelete(ctx, user.ID), repositories.ErrUserNotFound)
		_, err = repo.FindByID(ctx, user.ID, true)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}
