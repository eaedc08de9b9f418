//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rfdist/internal/distribution/models"
	"rfdist/internal/distribution/store"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
	"rfdist/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "distributions"))
}

func newTestDistribution(token string) *models.Distribution {
	return models.New(
		id.DistributionID(uuid.New()),
		id.ProgramID(uuid.New()),
		id.UserID(uuid.New()),
		token,
		time.Now().UTC().Truncate(time.Microsecond),
	)
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	d := newTestDistribution("tok-" + uuid.NewString())

	s.Require().NoError(s.store.Create(ctx, d))

	found, err := s.store.FindByToken(ctx, d.Token)
	s.Require().NoError(err)
	s.Equal(d.ID, found.ID)
	s.Equal(models.StatusPending, found.Status)
	s.WithinDuration(d.ExpiresAt, found.ExpiresAt, time.Millisecond)
	s.Nil(found.CompletedAt)
}

func (s *PostgresStoreSuite) TestTokenUniqueness() {
	ctx := context.Background()
	token := "tok-" + uuid.NewString()

	s.Require().NoError(s.store.Create(ctx, newTestDistribution(token)))
	err := s.store.Create(ctx, newTestDistribution(token))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindUnknownToken() {
	_, err := s.store.FindByToken(context.Background(), "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCompleteOverwrites() {
	ctx := context.Background()
	d := newTestDistribution("tok-" + uuid.NewString())
	s.Require().NoError(s.store.Create(ctx, d))

	first := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := s.store.Complete(ctx, d.Token, first)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, updated.Status)
	s.Require().NotNil(updated.CompletedAt)

	second := first.Add(time.Hour)
	updated, err = s.store.Complete(ctx, d.Token, second)
	s.Require().NoError(err)
	s.Require().NotNil(updated.CompletedAt)
	s.WithinDuration(second, *updated.CompletedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestCompleteUnknownToken() {
	_, err := s.store.Complete(context.Background(), "missing", time.Now())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)
	for i := 0; i < 3; i++ {
		d := models.New(
			id.DistributionID(uuid.New()),
			id.ProgramID(uuid.New()),
			id.UserID(uuid.New()),
			"tok-"+uuid.NewString(),
			base.Add(time.Duration(i)*time.Minute),
		)
		s.Require().NoError(s.store.Create(ctx, d))
	}

	distributions, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(distributions, 3)
	s.True(distributions[0].CreatedAt.After(distributions[2].CreatedAt))
}

// TestConcurrentCreatesSameToken verifies the unique constraint lets
// exactly one insert win under contention.
func (s *PostgresStoreSuite) TestConcurrentCreatesSameToken() {
	ctx := context.Background()
	token := "tok-" + uuid.NewString()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestDistribution(token))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())
}
