package service

import (
	"context"
	"time"

	"socialhub/internal/cache"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

type FollowService struct {
	op
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	tx            repository.Transactor
	notifications *NotificationService
	cache         *cache.Cache
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	notifications *NotificationService,
	c *cache.Cache,
	timeout time.Duration,
) *FollowService {
	return &FollowService{
		op:            newOp("FollowService", timeout),
		followRepo:    followRepo,
		userRepo:      userRepo,
		tx:            tx,
		notifications: notifications,
		cache:         c,
	}
}

// Toggle follows or unfollows followingID and reports whether followerID
// follows it afterwards. Only the call that inserts the edge notifies the
// followed user.
func (s *FollowService) Toggle(ctx context.Context, followerID, followingID string) (_ bool, err error) {
	ctx, done := s.start(ctx, "Toggle")
	defer done(&err)

	if followerID == followingID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	exists, err := s.userRepo.Exists(ctx, followingID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, models.NewNotFoundError("User", followingID)
	}

	var (
		following bool
		note      *models.Notification
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		on, created, err := s.followRepo.Toggle(ctx, followerID, followingID)
		if err != nil {
			return err
		}
		following = on
		if !created {
			return nil
		}
		note, err = s.notifications.Emit(ctx, followingID, models.NotificationFollow, models.NotificationPayload{
			FromUserID: followerID,
		})
		return err
	})
	if err != nil {
		return false, err
	}

	observability.ToggleOutcomes.WithLabelValues("follow", observability.ToggleState(following)).Inc()
	s.cache.Invalidate(ctx, cache.ProfileCountsKey(followerID), cache.ProfileCountsKey(followingID))
	s.notifications.Publish(ctx, note)
	return following, nil
}

type ListFollowsInput struct {
	RequesterID string
	TargetID    string
	Type        string
}

// List returns the followers and/or followed accounts of the target, which
// defaults to the requester. An empty Type returns both sides.
func (s *FollowService) List(ctx context.Context, in ListFollowsInput) (_ models.FollowLists, err error) {
	ctx, done := s.start(ctx, "List")
	defer done(&err)

	var out models.FollowLists

	switch in.Type {
	case "", models.FollowListFollowers, models.FollowListFollowing:
	default:
		return out, models.NewValidationError("Invalid follow list type").WithExtra("type", in.Type)
	}

	target := in.TargetID
	if target == "" {
		target = in.RequesterID
	}
	exists, err := s.userRepo.Exists(ctx, target)
	if err != nil {
		return out, err
	}
	if !exists {
		return out, models.NewNotFoundError("User", target)
	}

	if in.Type != models.FollowListFollowing {
		if out.Followers, err = s.followRepo.Followers(ctx, target); err != nil {
			return out, err
		}
	}
	if in.Type != models.FollowListFollowers {
		if out.Following, err = s.followRepo.Following(ctx, target); err != nil {
			return out, err
		}
	}
	return out, nil
}
