package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rfdist/internal/distribution/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

// PostgresStore persists distributions in PostgreSQL. Pure I/O; the
// state machine (derived expiry, unconditional completion) belongs to
// the models and service layers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Distribution) error {
	query := `
		INSERT INTO distributions (id, program_id, user_id, token, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(d.ID),
		uuid.UUID(d.ProgramID),
		uuid.UUID(d.UserID),
		d.Token,
		string(d.Status),
		d.CreatedAt,
		d.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create distribution: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*models.Distribution, error) {
	query := `
		SELECT id, program_id, user_id, token, status, created_at, expires_at, completed_at
		FROM distributions
		WHERE token = $1
	`
	d, err := scanDistribution(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find distribution: %w", err)
	}
	return d, nil
}

// Complete atomically overwrites status and completion timestamp in a
// single UPDATE...RETURNING, so concurrent completions cannot produce a
// torn row. No status guard: repeat and post-expiry completions succeed.
func (s *PostgresStore) Complete(ctx context.Context, token string, now time.Time) (*models.Distribution, error) {
	query := `
		UPDATE distributions
		SET status = $2, completed_at = $3
		WHERE token = $1
		RETURNING id, program_id, user_id, token, status, created_at, expires_at, completed_at
	`
	d, err := scanDistribution(s.db.QueryRowContext(ctx, query, token, string(models.StatusCompleted), now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("complete distribution: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Distribution, error) {
	query := `
		SELECT id, program_id, user_id, token, status, created_at, expires_at, completed_at
		FROM distributions
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()

	var distributions []*models.Distribution
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		distributions = append(distributions, d)
	}
	return distributions, rows.Err()
}

type row interface {
	Scan(dest ...any) error
}

func scanDistribution(r row) (*models.Distribution, error) {
	var d models.Distribution
	var rawID, rawProgramID, rawUserID uuid.UUID
	var status string
	var completedAt sql.NullTime
	if err := r.Scan(&rawID, &rawProgramID, &rawUserID, &d.Token, &status, &d.CreatedAt, &d.ExpiresAt, &completedAt); err != nil {
		return nil, err
	}
	d.ID = id.DistributionID(rawID)
	d.ProgramID = id.ProgramID(rawProgramID)
	d.UserID = id.UserID(rawUserID)
	d.Status = models.Status(status)
	if completedAt.Valid {
		completedAtValue := completedAt.Time
		d.CompletedAt = &completedAtValue
	}
	return &d, nil
}
