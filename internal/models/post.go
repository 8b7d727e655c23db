package models

import (
	"time"

	"gorm.io/gorm"
)

// Privacy controls who a post is intended for.
type Privacy string

const (
	PrivacyPublic    Privacy = "PUBLIC"
	PrivacyFollowers Privacy = "FOLLOWERS"
)

// Limits on post content.
const (
	MaxPostContentLength = 5000
	MaxPostImages        = 4
)

// Post represents a post in the SocialHub feed.
type Post struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string       `gorm:"size:128;not null;index" json:"-"`
	Author    *UserSummary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string       `gorm:"type:text;not null;default:''" json:"content"`
	ImageURLs []string     `gorm:"column:image_urls;type:text;serializer:json" json:"imageUrls"`
	LikeCount int          `gorm:"not null;default:0" json:"likeCount"`
	Privacy   Privacy      `gorm:"size:16;not null;default:PUBLIC" json:"privacy"`
	CreatedAt time.Time    `gorm:"index:idx_posts_created_id,priority:1" json:"createdAt"`
	UpdatedAt time.Time    `json:"-"`
	Comments  []Comment    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// PostDetail is the single-post view. Unlike feed items it always carries
// a comments array, empty when nobody has commented.
type PostDetail struct {
	*Post
	Comments []Comment `json:"comments"`
}

// NewPostDetail wraps p for the detail view.
func NewPostDetail(p *Post) PostDetail {
	comments := p.Comments
	if comments == nil {
		comments = []Comment{}
	}
	return PostDetail{Post: p, Comments: comments}
}

// BeforeCreate assigns the id and creation timestamp.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	stamp(&p.ID, &p.CreatedAt)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	if p.Privacy == "" {
		p.Privacy = PrivacyPublic
	}
	return nil
}

// CursorKey implements pagination.Keyed.
func (p *Post) CursorKey() (time.Time, string) {
	return p.CreatedAt, p.ID
}
