package repository

import (
	"context"

	"socialhub/internal/models"
	"socialhub/internal/pagination"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, cur *pagination.Cursor, limit int) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return wrap(conn(ctx, r.db).Create(n).Error, "Notification", n.ID)
}

func (r *notificationRepository) List(ctx context.Context, userID string, unreadOnly bool, cur *pagination.Cursor, limit int) ([]*models.Notification, error) {
	q := conn(ctx, r.db).Where("notifications.user_id = ?", userID)
	if unreadOnly {
		q = q.Where("notifications.is_read = ?", false)
	}

	var list []*models.Notification
	if err := q.Scopes(pagination.Scope("notifications", cur, limit)).Find(&list).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// MarkAllRead flags every unread notification of the user and returns how
// many changed.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := conn(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// MarkRead flags one notification owned by userID. It reports false when no
// such notification exists for that user.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
