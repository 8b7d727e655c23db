package repository

import (
	"context"

	"socialhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID string) (following, created bool, err error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	Followers(ctx context.Context, userID string) ([]models.FollowEntry, error)
	Following(ctx context.Context, userID string) ([]models.FollowEntry, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle removes the edge if present and creates it otherwise. It reports
// whether followerID follows followingID afterwards, and whether this call
// inserted the edge. A concurrent toggle can win the insert, in which case
// following is true but created is false.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID string) (following, created bool, err error) {
	err = conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		edge := &models.Follow{FollowerID: followerID, FollowingID: followingID}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Follower", "Following").Create(edge)
		if ins.Error != nil {
			return ins.Error
		}
		following, created = true, ins.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, false, wrap(err, "User", followingID)
	}
	return following, created, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := conn(ctx, r.db).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// Followers lists the users following userID, most recent first.
func (r *followRepository) Followers(ctx context.Context, userID string) ([]models.FollowEntry, error) {
	return r.entries(ctx, "follows.follower_id", "follows.following_id", userID)
}

// Following lists the users userID follows, most recent first.
func (r *followRepository) Following(ctx context.Context, userID string) ([]models.FollowEntry, error) {
	return r.entries(ctx, "follows.following_id", "follows.follower_id", userID)
}

func (r *followRepository) entries(ctx context.Context, joinCol, filterCol, userID string) ([]models.FollowEntry, error) {
	entries := []models.FollowEntry{}
	err := conn(ctx, r.db).
		Table("follows").
		Select("follows.created_at AS followed_at, users.id, users.username, users.name, users.avatar_url, users.created_at").
		Joins("JOIN users ON users.id = "+joinCol).
		Where(filterCol+" = ?", userID).
		Order("follows.created_at DESC").Order("follows.id DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}
