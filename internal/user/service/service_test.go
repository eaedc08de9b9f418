package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdist/internal/user/store"
	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())

		user, err := svc.CreateUser(ctx, "jsmith", "j@example.com", "handle-1")
		require.NoError(t, err)
		assert.Equal(t, "jsmith", user.Username)
		assert.True(t, user.Active)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		_, err := svc.CreateUser(ctx, "jsmith", "", "")
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, "JSmith", "", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("empty username rejected", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())

		_, err := svc.CreateUser(ctx, "", "", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestDeactivateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivated user drops from active listing", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())
		user, err := svc.CreateUser(ctx, "jsmith", "", "")
		require.NoError(t, err)

		require.NoError(t, svc.DeactivateUser(ctx, user.ID))

		active, err := svc.ListUsers(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := svc.ListUsers(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("unknown user not found", func(t *testing.T) {
		svc := New(store.NewInMemoryStore())

		err := svc.DeactivateUser(ctx, id.UserID(uuid.New()))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
