package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_MarkAllReadSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "is_read"=$1 WHERE user_id = $2 AND is_read = $3`)).
		WithArgs(true, "u1", false).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.MarkAllRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkReadError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "is_read"=$1 WHERE id = $2 AND user_id = $3`)).
		WithArgs(true, "n1", "u1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.MarkRead(context.Background(), "u1", "n1")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInternal, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func seedNotifications(t *testing.T, repo NotificationRepository, userID string, n int) []*models.Notification {
	t.Helper()
	out := make([]*models.Notification, 0, n)
	for i := 0; i < n; i++ {
		note := &models.Notification{
			UserID:    userID,
			Type:      models.NotificationFollow,
			Payload:   models.NotificationPayload{FromUserID: "someone"},
			CreatedAt: testutil.BaseTime.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), note))
		out = append(out, note)
	}
	return out
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "u1")
	testutil.CreateUser(t, db, "u2")
	seedNotifications(t, repo, "u1", 3)
	seedNotifications(t, repo, "u2", 1)

	n, err := repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err := repo.List(ctx, "u1", true, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, unread)

	others, err := repo.List(ctx, "u2", true, nil, 10)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestNotificationRepository_ListAndMarkRead(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "u1")
	testutil.CreateUser(t, db, "u2")
	notes := seedNotifications(t, repo, "u1", 3)

	list, err := repo.List(ctx, "u1", false, nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, notes[2].ID, list[0].ID)
	assert.Equal(t, "someone", list[0].Payload.FromUserID)

	ok, err := repo.MarkRead(ctx, "u2", notes[0].ID)
	require.NoError(t, err)
	assert.False(t, ok, "other users cannot mark it")

	ok, err = repo.MarkRead(ctx, "u1", notes[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkRead(ctx, "u1", notes[0].ID)
	require.NoError(t, err)
	assert.True(t, ok, "marking twice still finds the row")

	unread, err := repo.List(ctx, "u1", true, nil, 10)
	require.NoError(t, err)
	assert.Len(t, unread, 2)
	for _, n := range unread {
		assert.NotEqual(t, notes[0].ID, n.ID)
	}
}
