package service

import (
	"context"
	"log/slog"
	"time"

	"socialhub/internal/events"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/pagination"
	"socialhub/internal/repository"
)

const publishTimeout = 3 * time.Second

type NotificationService struct {
	op
	repo      repository.NotificationRepository
	publisher events.Publisher
}

func NewNotificationService(
	repo repository.NotificationRepository,
	publisher events.Publisher,
	timeout time.Duration,
) *NotificationService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &NotificationService{
		op:        newOp("NotificationService", timeout),
		repo:      repo,
		publisher: publisher,
	}
}

type ListNotificationsInput struct {
	UserID     string
	Limit      int
	Cursor     string
	UnreadOnly bool
}

func (s *NotificationService) List(ctx context.Context, in ListNotificationsInput) (_ pagination.Page[*models.Notification], err error) {
	ctx, done := s.start(ctx, "List")
	defer done(&err)

	limit, cur, err := pageArgs(in.Limit, in.Cursor)
	if err != nil {
		return pagination.Page[*models.Notification]{}, err
	}
	rows, err := s.repo.List(ctx, in.UserID, in.UnreadOnly, cur, limit)
	if err != nil {
		return pagination.Page[*models.Notification]{}, err
	}
	return pagination.Trim(rows, limit), nil
}

// MarkAllRead flags every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (_ int64, err error) {
	ctx, done := s.start(ctx, "MarkAllRead")
	defer done(&err)

	return s.repo.MarkAllRead(ctx, userID)
}

// MarkOneRead flags a single notification owned by userID.
func (s *NotificationService) MarkOneRead(ctx context.Context, userID, id string) (err error) {
	ctx, done := s.start(ctx, "MarkOneRead")
	defer done(&err)

	if !models.IsUUID(id) {
		return models.NewValidationError("Invalid notification id").WithExtra("id", id)
	}
	found, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

// Emit stores a notification for recipientID using ctx, so it joins the
// caller's transaction. Self-actions produce no notification and return nil.
func (s *NotificationService) Emit(
	ctx context.Context, recipientID string, typ models.NotificationType, payload models.NotificationPayload,
) (*models.Notification, error) {
	if recipientID == "" || recipientID == payload.FromUserID {
		return nil, nil
	}
	n := &models.Notification{
		UserID:  recipientID,
		Type:    typ,
		Payload: payload,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Publish announces committed notifications. Failures are logged and
// counted, never returned.
func (s *NotificationService) Publish(ctx context.Context, notes ...*models.Notification) {
	for _, n := range notes {
		if n == nil {
			continue
		}
		observability.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		err := s.publisher.Publish(pubCtx, events.NotificationCreated(n))
		cancel()
		if err != nil {
			observability.EventPublishFailures.WithLabelValues(s.publisher.Backend(), events.TypeNotificationCreated).Inc()
			slog.WarnContext(ctx, "failed to publish notification event",
				slog.String("notification_id", n.ID),
				slog.String("backend", s.publisher.Backend()),
				slog.String("error", err.Error()),
			)
		}
	}
}
