package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdist/internal/distribution/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

func newDistribution(token string, now time.Time) *models.Distribution {
	return models.New(
		id.DistributionID(uuid.New()),
		id.ProgramID(uuid.New()),
		id.UserID(uuid.New()),
		token,
		now,
	)
}

func TestInMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewInMemoryStore()

	t.Run("creates and finds by token", func(t *testing.T) {
		d := newDistribution("tok-1", now)
		require.NoError(t, store.Create(ctx, d))

		found, err := store.FindByToken(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, d.ID, found.ID)
		assert.Equal(t, models.StatusPending, found.Status)
	})

	t.Run("duplicate token conflicts", func(t *testing.T) {
		err := store.Create(ctx, newDistribution("tok-1", now))
		require.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("unknown token not found", func(t *testing.T) {
		_, err := store.FindByToken(ctx, "missing")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryStoreComplete(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewInMemoryStore()
	require.NoError(t, store.Create(ctx, newDistribution("tok-c", now)))

	t.Run("completes pending", func(t *testing.T) {
		d, err := store.Complete(ctx, "tok-c", now)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, d.Status)
		require.NotNil(t, d.CompletedAt)
		assert.Equal(t, now, *d.CompletedAt)
	})

	t.Run("repeat completion overwrites timestamp", func(t *testing.T) {
		later := now.Add(time.Hour)
		d, err := store.Complete(ctx, "tok-c", later)
		require.NoError(t, err)
		require.NotNil(t, d.CompletedAt)
		assert.Equal(t, later, *d.CompletedAt)
	})

	t.Run("unknown token not found", func(t *testing.T) {
		_, err := store.Complete(ctx, "missing", now)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC()
	store := NewInMemoryStore()

	for i := 0; i < 3; i++ {
		d := newDistribution(fmt.Sprintf("tok-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Create(ctx, d))
	}

	distributions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, distributions, 3)
	assert.Equal(t, "tok-2", distributions[0].Token)
	assert.Equal(t, "tok-0", distributions[2].Token)
}

func TestInMemoryStoreConcurrentCompletes(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewInMemoryStore()
	require.NoError(t, store.Create(ctx, newDistribution("tok-race", now)))

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := store.Complete(ctx, "tok-race", now.Add(time.Duration(i)*time.Millisecond))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	d, err := store.FindByToken(ctx, "tok-race")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, d.Status)
	assert.NotNil(t, d.CompletedAt)
}

func TestInMemoryStoreConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewInMemoryStore()

	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			errs <- store.Create(ctx, newDistribution("same-token", now))
		}()
	}
	wg.Wait()
	close(errs)

	var conflicts, successes int
	for err := range errs {
		if err == nil {
			successes++
		} else if assert.ErrorIs(t, err, sentinel.ErrConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes, "exactly one create may win")
	assert.Equal(t, workers-1, conflicts)
}
