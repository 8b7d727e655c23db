package models

import (
	"time"

	"gorm.io/gorm"
)

// Bookmark records that a user saved a post. At most one row per pair.
type Bookmark struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_bookmarks_user_post,priority:1" json:"userId"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_bookmarks_user_post,priority:2" json:"postId"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns the id and creation timestamp.
func (b *Bookmark) BeforeCreate(_ *gorm.DB) error {
	stamp(&b.ID, &b.CreatedAt)
	return nil
}

// CursorKey implements pagination.Keyed.
func (b *Bookmark) CursorKey() (time.Time, string) {
	return b.CreatedAt, b.ID
}

// BookmarkedPost is a post listed from a user's bookmarks.
type BookmarkedPost struct {
	BookmarkID string `json:"bookmarkId"`
	*Post
}
