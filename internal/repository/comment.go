package repository

import (
	"context"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := conn(ctx, r.db)
	if err := db.Omit("Author").Create(comment).Error; err != nil {
		return wrap(err, "Comment", comment.ID)
	}

	var author models.UserSummary
	if err := db.Where("id = ?", comment.AuthorID).First(&author).Error; err != nil {
		return wrap(err, "User", comment.AuthorID)
	}
	comment.Author = &author
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := conn(ctx, r.db).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
