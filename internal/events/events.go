// Package events publishes domain events to external consumers.
package events

import (
	"context"
	"fmt"
	"time"

	"socialhub/internal/models"
)

// Event types.
const (
	TypeNotificationCreated = "notification.created"
)

// Event is the envelope written to every backend.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// NotificationCreatedData is the body of a notification.created event.
type NotificationCreatedData struct {
	ID        string                     `json:"id"`
	UserID    string                     `json:"userId"`
	Type      models.NotificationType    `json:"type"`
	Payload   models.NotificationPayload `json:"payload"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// NotificationCreated builds the event announcing a persisted notification.
// The key is the recipient so per-user ordering holds on partitioned backends.
func NotificationCreated(n *models.Notification) Event {
	return Event{
		Type:       TypeNotificationCreated,
		Key:        n.UserID,
		OccurredAt: n.CreatedAt,
		Data: NotificationCreatedData{
			ID:        n.ID,
			UserID:    n.UserID,
			Type:      n.Type,
			Payload:   n.Payload,
			CreatedAt: n.CreatedAt,
		},
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Backend() string
	Close() error
}

// UserChannel returns the Redis channel carrying a user's events.
func UserChannel(userID string) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Backend() string                      { return "none" }
func (Noop) Close() error                         { return nil }
