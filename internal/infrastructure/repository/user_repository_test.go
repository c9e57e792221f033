//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserRepository(t *testing.T) {
	db, _ := dbtest.StartPostgres(t)
	repo := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	user := domain.NewUser("Jane Admin", "jane@example.com", "$2a$10$hash")
	user.Roles.Add(domain.RoleAdmin)
	user.Phone = "555-0100"

	t.Run("create assigns an id", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, user))
		assert.NotZero(t, user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := domain.NewUser("Other", "jane@example.com", "hash")
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrUserAlreadyExists)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", got.Email)
		assert.Equal(t, "555-0100", got.Phone)
		assert.True(t, got.HasRole(domain.RoleAdmin))
		assert.True(t, got.HasRole(domain.RoleUser))
		assert.Nil(t, got.OrgID)
	})

	t.Run("find by email ignores case", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "JANE@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("exists by email", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("password update is visible immediately", func(t *testing.T) {
		before, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)

		require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$2a$10$newhash"))

		after, err := repo.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$newhash", after.Password)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("update password for missing user", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdatePassword(ctx, 999999, "hash"), domain.ErrUserNotFound)
	})

	t.Run("legacy comma separated roles", func(t *testing.T) {
		_, err := db.Exec(ctx, `UPDATE users SET roles = ARRAY['Admin,OrgAdmin'] WHERE id = $1`, user.ID)
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Admin", "OrgAdmin"}, got.Roles.Strings())
	})
}
