package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rfdist/internal/operator/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

// PostgresStore persists operator accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, operator *models.Operator) error {
	query := `
		INSERT INTO operators (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(operator.ID),
		operator.Username,
		operator.PasswordHash,
		operator.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create operator: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.Operator, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM operators
		WHERE LOWER(username) = LOWER($1)
	`
	var operator models.Operator
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, username).Scan(&rawID, &operator.Username, &operator.PasswordHash, &operator.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find operator: %w", err)
	}
	operator.ID = id.OperatorID(rawID)
	return &operator, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count operators: %w", err)
	}
	return count, nil
}
