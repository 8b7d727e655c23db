package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	FollowerID  string       `gorm:"size:128;not null;uniqueIndex:idx_follows_pair,priority:1;check:chk_follows_not_self,follower_id <> following_id" json:"followerId"`
	FollowingID string       `gorm:"size:128;not null;uniqueIndex:idx_follows_pair,priority:2;index" json:"followingId"`
	Follower    *UserSummary `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following   *UserSummary `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// BeforeCreate assigns the id and creation timestamp.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	stamp(&f.ID, &f.CreatedAt)
	return nil
}

// FollowEntry is one user in a followers or following list.
type FollowEntry struct {
	FollowedAt time.Time `json:"followedAt"`
	UserSummary
}

// Follow list selectors.
const (
	FollowListFollowers = "followers"
	FollowListFollowing = "following"
)

// FollowLists holds whichever sides of the follow graph were requested.
// A nil slice means the side was not requested.
type FollowLists struct {
	Followers []FollowEntry
	Following []FollowEntry
}
