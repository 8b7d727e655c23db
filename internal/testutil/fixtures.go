package testutil

import (
	"fmt"
	"testing"
	"time"

	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a user with a fake profile.
func CreateUser(t testing.TB, db *gorm.DB, id string) *models.User {
	t.Helper()
	u := &models.User{
		ID:       id,
		Email:    fmt.Sprintf("%s@example.com", id),
		Username: "u_" + id,
		Name:     gofakeit.Name(),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by authorID at the given time.
func CreatePost(t testing.TB, db *gorm.DB, authorID, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: at,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// BaseTime is a fixed reference instant for deterministic fixtures.
var BaseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
