package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a SocialHub account. ID is the identity provider's subject.
type User struct {
	ID        string    `gorm:"primaryKey;size:128" json:"id"`
	Email     string    `gorm:"size:255;index" json:"email,omitempty"`
	Username  string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Name      string    `gorm:"size:60;not null;default:''" json:"name"`
	Bio       *string   `gorm:"size:160" json:"bio"`
	AvatarURL *string   `gorm:"column:avatar_url" json:"avatarUrl"`
	CoverURL  *string   `gorm:"column:cover_url" json:"coverUrl"`
	Location  *string   `gorm:"size:100" json:"location"`
	Website   *string   `json:"website"`
	CreatedAt time.Time `gorm:"index:idx_users_created_id,priority:1" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate normalizes the creation timestamp.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = Now()
	} else {
		u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Microsecond)
	}
	return nil
}

// Summary returns the public author card for the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// UserSummary is the author card embedded in posts, comments, follow lists
// and search hits. It reads from the users table.
type UserSummary struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	AvatarURL *string   `gorm:"column:avatar_url" json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName maps UserSummary onto the users table.
func (UserSummary) TableName() string {
	return "users"
}

// CursorKey implements pagination.Keyed.
func (u UserSummary) CursorKey() (time.Time, string) {
	return u.CreatedAt, u.ID
}

// ProfileCounts aggregates the public relationship counters of a user.
type ProfileCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// PublicProfile is what anyone can see at /users/:username.
type PublicProfile struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Name      string        `json:"name"`
	Bio       *string       `json:"bio"`
	AvatarURL *string       `json:"avatarUrl"`
	CoverURL  *string       `json:"coverUrl"`
	Location  *string       `json:"location"`
	Website   *string       `json:"website"`
	CreatedAt time.Time     `json:"createdAt"`
	Counts    ProfileCounts `json:"counts"`
}
