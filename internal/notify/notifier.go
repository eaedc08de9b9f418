// Package notify is the outbound push-notification boundary.
//
// Dispatch is best-effort and fire-and-forget: the distribution service
// calls Notify after issuing a token and logs any error without failing
// the issuance. No retries, no delivery confirmation.
package notify

import (
	"context"

	programmodels "rfdist/internal/program/models"
	usermodels "rfdist/internal/user/models"
)

// Notifier sends a push notification telling a user a program is ready.
// Implementations must treat a user without a push handle as a silent
// no-op and must never panic on transport failure.
type Notifier interface {
	Notify(ctx context.Context, user *usermodels.User, program *programmodels.Program) error
}

// Fixed notification template. The program identity travels as
// structured metadata; the visible text never varies.
const (
	notificationTitle = "RF Access Programming"
	notificationBody  = "You have a new access card ready to program"
)

// Message is the wire payload published to the user's channel.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// Noop discards all notifications. Used when no transport is configured
// and as a test double.
type Noop struct{}

func (Noop) Notify(context.Context, *usermodels.User, *programmodels.Program) error {
	return nil
}
