package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	programmodels "rfdist/internal/program/models"
	usermodels "rfdist/internal/user/models"
)

// RedisDispatcher publishes notifications to a per-user Redis channel
// derived from the user's push handle. Mobile clients subscribe to
// their own channel; delivery is whatever pub/sub gives us, which is
// exactly the best-effort contract this boundary promises.
type RedisDispatcher struct {
	client redis.UniversalClient
}

func NewRedisDispatcher(client redis.UniversalClient) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

// Notify publishes the fixed-template message. Silent no-op when the
// user has no push handle.
func (d *RedisDispatcher) Notify(ctx context.Context, user *usermodels.User, program *programmodels.Program) error {
	if user.PushHandle == "" {
		return nil
	}

	payload, err := json.Marshal(Message{
		Title: notificationTitle,
		Body:  notificationBody,
		Data: map[string]string{
			"type":       "program_available",
			"program_id": program.ID.String(),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := d.client.Publish(ctx, Channel(user.PushHandle), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Channel derives the per-user channel name from a push handle.
func Channel(pushHandle string) string {
	return "user_" + pushHandle
}
