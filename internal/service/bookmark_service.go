package service

import (
	"context"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/pagination"
	"socialhub/internal/repository"
)

type BookmarkService struct {
	op
	bookmarkRepo repository.BookmarkRepository
	postRepo     repository.PostRepository
}

func NewBookmarkService(
	bookmarkRepo repository.BookmarkRepository,
	postRepo repository.PostRepository,
	timeout time.Duration,
) *BookmarkService {
	return &BookmarkService{
		op:           newOp("BookmarkService", timeout),
		bookmarkRepo: bookmarkRepo,
		postRepo:     postRepo,
	}
}

// Toggle flips the bookmark state of the post for the user and reports
// whether it is bookmarked afterwards.
func (s *BookmarkService) Toggle(ctx context.Context, userID, postID string) (_ bool, err error) {
	ctx, done := s.start(ctx, "Toggle")
	defer done(&err)

	if !models.IsUUID(postID) {
		return false, models.NewNotFoundError("Post", postID)
	}
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, models.NewNotFoundError("Post", postID)
	}

	on, err := s.bookmarkRepo.Toggle(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	observability.ToggleOutcomes.WithLabelValues("bookmark", observability.ToggleState(on)).Inc()
	return on, nil
}

type ListBookmarksInput struct {
	UserID string
	Limit  int
	Cursor string
}

// List pages through the user's bookmarks, most recently saved first.
func (s *BookmarkService) List(ctx context.Context, in ListBookmarksInput) (_ pagination.Page[models.BookmarkedPost], err error) {
	ctx, done := s.start(ctx, "List")
	defer done(&err)

	limit, cur, err := pageArgs(in.Limit, in.Cursor)
	if err != nil {
		return pagination.Page[models.BookmarkedPost]{}, err
	}
	rows, err := s.bookmarkRepo.List(ctx, in.UserID, cur, limit)
	if err != nil {
		return pagination.Page[models.BookmarkedPost]{}, err
	}

	page := pagination.Trim(rows, limit)
	posts := make([]models.BookmarkedPost, 0, len(page.Items))
	for _, b := range page.Items {
		if b.Post == nil {
			continue
		}
		posts = append(posts, models.BookmarkedPost{BookmarkID: b.ID, Post: b.Post})
	}
	return pagination.Page[models.BookmarkedPost]{Items: posts, NextCursor: page.NextCursor}, nil
}
