package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rfdist/internal/program/models"
	id "rfdist/pkg/domain"
	"rfdist/pkg/platform/sentinel"
)

// PostgresStore persists programs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, program *models.Program) error {
	query := `
		INSERT INTO programs (id, name, description, sector_data, created_by, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(program.ID),
		program.Name,
		program.Description,
		[]byte(program.SectorData),
		uuid.UUID(program.CreatedBy),
		program.Active,
		program.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, programID id.ProgramID) (*models.Program, error) {
	query := `
		SELECT id, name, description, sector_data, created_by, active, created_at
		FROM programs
		WHERE id = $1
	`
	program, err := scanProgram(s.db.QueryRowContext(ctx, query, uuid.UUID(programID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return program, nil
}

func (s *PostgresStore) List(ctx context.Context, activeOnly bool) ([]*models.Program, error) {
	query := `
		SELECT id, name, description, sector_data, created_by, active, created_at
		FROM programs
		WHERE ($1 = FALSE OR active)
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

func (s *PostgresStore) Deactivate(ctx context.Context, programID id.ProgramID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE programs SET active = FALSE WHERE id = $1`, uuid.UUID(programID))
	if err != nil {
		return fmt.Errorf("deactivate program: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate program rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func scanProgram(r row) (*models.Program, error) {
	var program models.Program
	var rawID, rawCreatedBy uuid.UUID
	var sectorData []byte
	if err := r.Scan(&rawID, &program.Name, &program.Description, &sectorData, &rawCreatedBy, &program.Active, &program.CreatedAt); err != nil {
		return nil, err
	}
	program.ID = id.ProgramID(rawID)
	program.CreatedBy = id.OperatorID(rawCreatedBy)
	program.SectorData = sectorData
	return &program, nil
}
