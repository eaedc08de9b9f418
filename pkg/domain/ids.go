// Package domain holds typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so IDs cannot be swapped
// across entity boundaries by accident. Parsing enforces the invariant
// that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "rfdist/pkg/domain-errors"
)

type (
	// OperatorID identifies an operator account.
	OperatorID uuid.UUID
	// UserID identifies an end user in the directory.
	UserID uuid.UUID
	// ProgramID identifies a program in the catalog.
	ProgramID uuid.UUID
	// DistributionID identifies a single distribution row.
	DistributionID uuid.UUID
)

func (id OperatorID) String() string     { return uuid.UUID(id).String() }
func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id ProgramID) String() string      { return uuid.UUID(id).String() }
func (id DistributionID) String() string { return uuid.UUID(id).String() }

func (id OperatorID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ProgramID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id DistributionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The defined types do not inherit uuid.UUID's text marshaling, so each
// delegates explicitly; without these, IDs would serialize to JSON as
// raw byte arrays instead of UUID strings.

func (id OperatorID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id ProgramID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id DistributionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *OperatorID) UnmarshalText(data []byte) error     { return (*uuid.UUID)(id).UnmarshalText(data) }
func (id *UserID) UnmarshalText(data []byte) error         { return (*uuid.UUID)(id).UnmarshalText(data) }
func (id *ProgramID) UnmarshalText(data []byte) error      { return (*uuid.UUID)(id).UnmarshalText(data) }
func (id *DistributionID) UnmarshalText(data []byte) error { return (*uuid.UUID)(id).UnmarshalText(data) }

// ParseOperatorID parses and validates an operator ID from its string form.
func ParseOperatorID(s string) (OperatorID, error) {
	u, err := parseUUID(s, "operator id")
	return OperatorID(u), err
}

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseProgramID parses and validates a program ID from its string form.
func ParseProgramID(s string) (ProgramID, error) {
	u, err := parseUUID(s, "program id")
	return ProgramID(u), err
}

// ParseDistributionID parses and validates a distribution ID from its string form.
func ParseDistributionID(s string) (DistributionID, error) {
	u, err := parseUUID(s, "distribution id")
	return DistributionID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be the nil UUID")
	}
	return u, nil
}
