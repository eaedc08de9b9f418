package models

import (
	"strings"
	"time"

	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
)

// Operator is an authenticated operator account. Authentication state
// lives in short-lived per-request JWTs, never in process-wide state.
type Operator struct {
	ID           id.OperatorID `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewOperator validates and constructs an operator account.
// The password must already be hashed (pkg/secrets.Hash).
func NewOperator(operatorID id.OperatorID, username, passwordHash string, now time.Time) (*Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "operator username cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "operator password hash cannot be empty")
	}
	return &Operator{
		ID:           operatorID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}
