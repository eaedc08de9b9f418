package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rfdist/internal/user/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL. Pure I/O; business rules
// live in the service layer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, push_handle, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Username,
		user.Email,
		user.PushHandle,
		user.Active,
		user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, username, email, push_handle, active, created_at
		FROM users
		WHERE id = $1
	`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) List(ctx context.Context, activeOnly bool) ([]*models.User, error) {
	query := `
		SELECT id, username, email, push_handle, active, created_at
		FROM users
		WHERE ($1 = FALSE OR active)
		ORDER BY username
	`
	rows, err := s.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *PostgresStore) Deactivate(ctx context.Context, userID id.UserID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET active = FALSE WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate user rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func scanUser(r row) (*models.User, error) {
	var user models.User
	var rawID uuid.UUID
	if err := r.Scan(&rawID, &user.Username, &user.Email, &user.PushHandle, &user.Active, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ID = id.UserID(rawID)
	return &user, nil
}
