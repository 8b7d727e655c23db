package service

import (
	"context"
	"strings"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

type CommentService struct {
	op
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	tx            repository.Transactor
	notifications *NotificationService
}

type AddCommentInput struct {
	PostID   string
	AuthorID string
	Content  string `json:"content" validate:"required,max=1000"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	tx repository.Transactor,
	notifications *NotificationService,
	timeout time.Duration,
) *CommentService {
	return &CommentService{
		op:            newOp("CommentService", timeout),
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		tx:            tx,
		notifications: notifications,
	}
}

// AddComment stores a comment and notifies the post author unless they
// wrote it.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (_ *models.Comment, err error) {
	ctx, done := s.start(ctx, "AddComment")
	defer done(&err)

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !models.IsUUID(in.PostID) {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: in.AuthorID,
		Content:  in.Content,
	}
	var note *models.Notification
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.commentRepo.Create(ctx, comment); err != nil {
			return err
		}
		var err error
		note, err = s.notifications.Emit(ctx, post.AuthorID, models.NotificationComment, models.NotificationPayload{
			PostID:     post.ID,
			CommentID:  comment.ID,
			FromUserID: in.AuthorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(ctx, note)
	return comment, nil
}
