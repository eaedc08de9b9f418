package models

import (
	"time"

	id "rfdist/pkg/domain"
)

// Status is the stored lifecycle state of a distribution.
//
// Only two values are ever persisted. Expiry is a derived condition
// computed against ExpiresAt at read time; it is intentionally NOT a
// stored status, because completion must keep working on an expired
// token and callers depend on that.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"

	// StatusExpired is a display-only value used when listing
	// distributions for operators. It never reaches the store.
	StatusExpired Status = "expired"
)

// TokenTTL is the fixed validity window for a distribution token.
// Not configurable per issuance.
const TokenTTL = 24 * time.Hour

// Distribution is a single-use, time-limited binding of one program to
// one user, identified by an unguessable bearer token.
//
// Invariants:
//   - Token is globally unique and never reused across distributions
//   - Status transitions: pending -> completed only; completed is terminal
//   - Rows are never physically deleted (audit record)
//
// Program and User are referenced by identity only. Deactivating either
// does not retroactively invalidate existing distributions.
type Distribution struct {
	ID          id.DistributionID `json:"id"`
	ProgramID   id.ProgramID      `json:"program_id"`
	UserID      id.UserID         `json:"user_id"`
	Token       string            `json:"token"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// New constructs a pending distribution expiring TokenTTL after now.
func New(distributionID id.DistributionID, programID id.ProgramID, userID id.UserID, token string, now time.Time) *Distribution {
	return &Distribution{
		ID:        distributionID,
		ProgramID: programID,
		UserID:    userID,
		Token:     token,
		Status:    StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}
}

// IsExpired reports whether the token's validity window has passed.
// Evaluated at read time; never changes the stored status.
func (d *Distribution) IsExpired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

func (d *Distribution) IsCompleted() bool {
	return d.Status == StatusCompleted
}

// ApplyCompletion marks the distribution completed. Deliberately
// unconditional: repeat calls overwrite the completion timestamp, and
// an expired token still completes. Stricter gating would be a policy
// change in the caller, not here.
func (d *Distribution) ApplyCompletion(now time.Time) {
	d.Status = StatusCompleted
	completedAt := now
	d.CompletedAt = &completedAt
}

// DisplayStatus is the operator-facing status: expired pending tokens
// show as expired without mutating stored state.
func (d *Distribution) DisplayStatus(now time.Time) Status {
	if d.Status == StatusPending && d.IsExpired(now) {
		return StatusExpired
	}
	return d.Status
}
