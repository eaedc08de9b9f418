package models

import (
	"encoding/json"
	"strings"
	"time"

	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
)

// Program is an operator-defined payload to be delivered to end users.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - SectorData is syntactically valid JSON; its contents are opaque
//     to this service and are returned to clients verbatim
//   - Immutable after creation except for the Active flag
//
// Programs are never physically deleted; deactivation removes them from
// operator pickers but existing distributions keep working.
type Program struct {
	ID          id.ProgramID    `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	SectorData  json.RawMessage `json:"sector_data"`
	CreatedBy   id.OperatorID   `json:"created_by"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Program) IsActive() bool {
	return p.Active
}

// Deactivate soft-deletes the program.
func (p *Program) Deactivate() {
	p.Active = false
}

// NewProgram validates and constructs a program. Payload validation is
// syntactic only: the sector data must parse as JSON, nothing more.
func NewProgram(programID id.ProgramID, name, description string, sectorData []byte, createdBy id.OperatorID, now time.Time) (*Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "program name cannot be empty")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "program name must be 200 characters or less")
	}
	if len(sectorData) == 0 || !json.Valid(sectorData) {
		return nil, dErrors.New(dErrors.CodeValidation, "sector data must be valid JSON")
	}
	return &Program{
		ID:          programID,
		Name:        name,
		Description: strings.TrimSpace(description),
		SectorData:  json.RawMessage(sectorData),
		CreatedBy:   createdBy,
		Active:      true,
		CreatedAt:   now,
	}, nil
}
