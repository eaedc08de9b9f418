package models

import (
	"strings"
	"time"

	id "rfdist/pkg/domain"
	dErrors "rfdist/pkg/domain-errors"
)

// User is an end user in the directory.
//
// PushHandle is an opaque external-identity handle used only to derive
// the notification channel. A user without one simply receives no push
// notifications; nothing else depends on it.
type User struct {
	ID         id.UserID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email,omitempty"`
	PushHandle string    `json:"push_handle,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) IsActive() bool {
	return u.Active
}

// Deactivate soft-deletes the user. Existing distributions that
// reference this user are deliberately left untouched.
func (u *User) Deactivate() {
	u.Active = false
}

// NewUser validates and constructs a user record.
func NewUser(userID id.UserID, username, email, pushHandle string, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if len(username) > 80 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be 80 characters or less")
	}
	return &User{
		ID:         userID,
		Username:   username,
		Email:      strings.TrimSpace(email),
		PushHandle: strings.TrimSpace(pushHandle),
		Active:     true,
		CreatedAt:  now,
	}, nil
}
