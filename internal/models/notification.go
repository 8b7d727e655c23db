package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType enumerates what triggered a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationFollow  NotificationType = "FOLLOW"
)

// NotificationPayload identifies the actor and entity behind a notification.
type NotificationPayload struct {
	PostID     string `json:"postId,omitempty"`
	CommentID  string `json:"commentId,omitempty"`
	FromUserID string `json:"fromUserId"`
}

// Notification is addressed to a single recipient.
type Notification struct {
	ID        string              `gorm:"primaryKey;size:36" json:"id"`
	UserID    string              `gorm:"size:128;not null;index:idx_notifications_user_created,priority:1" json:"-"`
	Type      NotificationType    `gorm:"size:16;not null" json:"type"`
	Payload   NotificationPayload `gorm:"type:text;serializer:json" json:"payload"`
	IsRead    bool                `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time           `gorm:"index:idx_notifications_user_created,priority:2" json:"createdAt"`
}

// BeforeCreate assigns the id and creation timestamp.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	stamp(&n.ID, &n.CreatedAt)
	return nil
}

// CursorKey implements pagination.Keyed.
func (n *Notification) CursorKey() (time.Time, string) {
	return n.CreatedAt, n.ID
}
