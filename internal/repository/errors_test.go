package repository

import (
	"errors"
	"fmt"
	"testing"

	"socialhub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUniqueViolationField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		field string
		ok    bool
	}{
		{
			name:  "postgres detail",
			err:   &pgconn.PgError{Code: PgUniqueViolation, Detail: "Key (username)=(alice) already exists."},
			field: "username",
			ok:    true,
		},
		{
			name:  "postgres wrapped",
			err:   fmt.Errorf("update: %w", &pgconn.PgError{Code: PgUniqueViolation, ConstraintName: "idx_users_username"}),
			field: "username",
			ok:    true,
		},
		{
			name: "postgres foreign key",
			err:  &pgconn.PgError{Code: PgForeignKeyViolation},
		},
		{
			name:  "sqlite",
			err:   errors.New("UNIQUE constraint failed: users.username"),
			field: "username",
			ok:    true,
		},
		{
			name:  "sqlite composite",
			err:   errors.New("UNIQUE constraint failed: bookmarks.user_id, bookmarks.post_id"),
			field: "user_id",
			ok:    true,
		},
		{
			name: "other",
			err:  errors.New("connection refused"),
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			field, ok := UniqueViolationField(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.ok, IsUniqueViolation(tt.err))
		})
	}
}

func TestIsConstraintViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsConstraintViolation(&pgconn.PgError{Code: PgCheckViolation}))
	assert.True(t, IsConstraintViolation(&pgconn.PgError{Code: PgInvalidTextRep}))
	assert.True(t, IsConstraintViolation(errors.New("CHECK constraint failed: chk_follows_not_self")))
	assert.False(t, IsConstraintViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsConstraintViolation(errors.New("timeout")))
	assert.False(t, IsConstraintViolation(nil))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, wrap(nil, "Post", "p1"))

	err := wrap(gorm.ErrRecordNotFound, "Post", "p1")
	var appErr *models.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "Post not found", appErr.Message)
	assert.True(t, IsNotFound(err))

	pgErr := &pgconn.PgError{Code: PgUniqueViolation}
	assert.Same(t, pgErr, wrap(pgErr, "User", "u1"))

	err = wrap(errors.New("boom"), "User", "u1")
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInternal, appErr.Code)

	forbidden := models.NewForbiddenError("no")
	assert.Same(t, forbidden, wrap(forbidden, "User", "u1"))
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "%go%", escapeLike("Go"))
	assert.Equal(t, `%100\%%`, escapeLike("100%"))
	assert.Equal(t, `%a\_b%`, escapeLike("a_b"))
	assert.Equal(t, `%c:\\dir%`, escapeLike(`C:\dir`))
}
