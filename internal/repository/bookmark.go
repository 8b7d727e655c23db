package repository

import (
	"context"

	"socialhub/internal/models"
	"socialhub/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepository defines persistence operations for saved posts.
type BookmarkRepository interface {
	Toggle(ctx context.Context, userID, postID string) (bool, error)
	List(ctx context.Context, userID string, cur *pagination.Cursor, limit int) ([]*models.Bookmark, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository creates a new bookmark repository
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

// Toggle removes the bookmark if it exists and creates it otherwise. It
// reports whether the post is bookmarked afterwards.
func (r *bookmarkRepository) Toggle(ctx context.Context, userID, postID string) (bool, error) {
	var bookmarked bool
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		bookmark := &models.Bookmark{UserID: userID, PostID: postID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Post").Create(bookmark).Error; err != nil {
			return err
		}
		bookmarked = true
		return nil
	})
	if err != nil {
		return false, wrap(err, "Post", postID)
	}
	return bookmarked, nil
}

// List returns the user's bookmarks newest first with each post and its
// author loaded, up to limit+1 rows.
func (r *bookmarkRepository) List(ctx context.Context, userID string, cur *pagination.Cursor, limit int) ([]*models.Bookmark, error) {
	var bookmarks []*models.Bookmark
	err := conn(ctx, r.db).
		Preload("Post").
		Preload("Post.Author").
		Where("bookmarks.user_id = ?", userID).
		Scopes(pagination.Scope("bookmarks", cur, limit)).
		Find(&bookmarks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return bookmarks, nil
}
