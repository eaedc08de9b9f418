package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "rfdist/internal/jwt_token"
	"rfdist/internal/operator/store"
	dErrors "rfdist/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *store.InMemoryStore) {
	t.Helper()
	operators := store.NewInMemoryStore()
	tokens := jwttoken.NewJWTService("test-signing-key", "rfdist", "rfdist-admin")
	return New(operators, tokens), operators
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds when store is empty", func(t *testing.T) {
		svc, operators := newTestService(t)
		require.NoError(t, svc.Seed(ctx, "admin", "admin123"))

		count, err := operators.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("no-op when an operator exists", func(t *testing.T) {
		svc, operators := newTestService(t)
		require.NoError(t, svc.Seed(ctx, "admin", "admin123"))
		require.NoError(t, svc.Seed(ctx, "another", "pw"))

		count, err := operators.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield a token", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.Seed(ctx, "admin", "admin123"))

		token, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("token round-trips through validation", func(t *testing.T) {
		operators := store.NewInMemoryStore()
		tokens := jwttoken.NewJWTService("test-signing-key", "rfdist", "rfdist-admin")
		svc := New(operators, tokens)
		require.NoError(t, svc.Seed(ctx, "admin", "admin123"))

		token, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.NotEmpty(t, claims.OperatorID)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.Seed(ctx, "admin", "admin123"))

		_, err := svc.Login(ctx, "admin", "nope")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown user gets the same error as wrong password", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.Seed(ctx, "admin", "admin123"))

		_, wrongPw := svc.Login(ctx, "admin", "nope")
		_, unknown := svc.Login(ctx, "ghost", "nope")
		assert.Equal(t, dErrors.MessageOf(wrongPw), dErrors.MessageOf(unknown))
	})
}
