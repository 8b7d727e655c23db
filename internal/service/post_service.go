package service

import (
	"context"
	"strings"
	"time"

	"socialhub/internal/cache"
	"socialhub/internal/models"
	"socialhub/internal/pagination"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

// Feed tabs.
const (
	FeedAll       = "ALL"
	FeedFollowing = "FOLLOWING"
)

type PostService struct {
	op
	postRepo      repository.PostRepository
	followRepo    repository.FollowRepository
	tx            repository.Transactor
	notifications *NotificationService
	cache         *cache.Cache
}

func NewPostService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	tx repository.Transactor,
	notifications *NotificationService,
	c *cache.Cache,
	timeout time.Duration,
) *PostService {
	return &PostService{
		op:            newOp("PostService", timeout),
		postRepo:      postRepo,
		followRepo:    followRepo,
		tx:            tx,
		notifications: notifications,
		cache:         c,
	}
}

type ListFeedInput struct {
	Tab         string
	Limit       int
	Cursor      string
	RequesterID string
}

// ListFeed pages through every post (ALL) or the posts of the accounts the
// requester follows (FOLLOWING), newest first.
func (s *PostService) ListFeed(ctx context.Context, in ListFeedInput) (_ pagination.Page[*models.Post], err error) {
	ctx, done := s.start(ctx, "ListFeed")
	defer done(&err)

	var empty pagination.Page[*models.Post]

	tab := strings.ToUpper(strings.TrimSpace(in.Tab))
	if tab == "" {
		tab = FeedAll
	}
	if tab != FeedAll && tab != FeedFollowing {
		return empty, models.NewValidationError("Invalid feed tab").WithExtra("tab", in.Tab)
	}

	limit, cur, err := pageArgs(in.Limit, in.Cursor)
	if err != nil {
		return empty, err
	}

	var authorIDs []string
	if tab == FeedFollowing {
		if in.RequesterID == "" {
			return empty, models.NewUnauthorizedError("Login required for FOLLOWING feed")
		}
		authorIDs, err = s.followRepo.FollowingIDs(ctx, in.RequesterID)
		if err != nil {
			return empty, err
		}
		if len(authorIDs) == 0 {
			return pagination.Trim[*models.Post](nil, limit), nil
		}
	}

	rows, err := s.postRepo.Feed(ctx, authorIDs, cur, limit)
	if err != nil {
		return empty, err
	}
	return pagination.Trim(rows, limit), nil
}

type CreatePostInput struct {
	AuthorID  string
	Content   string         `json:"content" validate:"max=5000"`
	ImageURLs []string       `json:"imageUrls" validate:"max=4,dive,url"`
	Privacy   models.Privacy `json:"privacy" validate:"omitempty,oneof=PUBLIC FOLLOWERS"`
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, done := s.start(ctx, "Create")
	defer done(&err)

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Content == "" && len(in.ImageURLs) == 0 {
		return nil, models.NewValidationError("Post must have content or at least one image")
	}

	post := &models.Post{
		AuthorID:  in.AuthorID,
		Content:   in.Content,
		ImageURLs: in.ImageURLs,
		Privacy:   in.Privacy,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ProfileCountsKey(in.AuthorID))

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetWithComments returns a post with its comments, oldest first.
func (s *PostService) GetWithComments(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, done := s.start(ctx, "GetWithComments")
	defer done(&err)

	if !models.IsUUID(id) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return s.postRepo.GetWithComments(ctx, id)
}

// Clap adds one like to the post and notifies its author unless the liker
// is the author.
func (s *PostService) Clap(ctx context.Context, postID, likerID string) (_ int, err error) {
	ctx, done := s.start(ctx, "Clap")
	defer done(&err)

	if !models.IsUUID(postID) {
		return 0, models.NewNotFoundError("Post", postID)
	}

	var (
		likeCount int
		note      *models.Notification
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		count, authorID, err := s.postRepo.Clap(ctx, postID)
		if err != nil {
			return err
		}
		likeCount = count

		note, err = s.notifications.Emit(ctx, authorID, models.NotificationLike, models.NotificationPayload{
			PostID:     postID,
			FromUserID: likerID,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	s.notifications.Publish(ctx, note)
	return likeCount, nil
}
