package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLength bounds trimmed comment content.
const MaxCommentLength = 1000

// Comment is a reply attached to a post.
type Comment struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	PostID    string       `gorm:"size:36;not null;index" json:"postId"`
	AuthorID  string       `gorm:"size:128;not null;index" json:"-"`
	Author    *UserSummary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
}

// BeforeCreate assigns the id and creation timestamp.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	stamp(&c.ID, &c.CreatedAt)
	return nil
}
