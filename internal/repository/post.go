package repository

import (
	"context"

	"socialhub/internal/models"
	"socialhub/internal/pagination"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetWithComments(ctx context.Context, id string) (*models.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	Feed(ctx context.Context, authorIDs []string, cur *pagination.Cursor, limit int) ([]*models.Post, error)
	Clap(ctx context.Context, id string) (likeCount int, authorID string, err error)
	Search(ctx context.Context, query string, cur *pagination.Cursor, limit int) ([]*models.Post, error)
	ScanTagged(ctx context.Context, query string, cur *pagination.Cursor, batch int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := conn(ctx, r.db).Omit("Author", "Comments").Create(post).Error; err != nil {
		return wrap(err, "Post", post.ID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := conn(ctx, r.db).
		Preload("Author").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, wrap(err, "Post", id)
	}
	return &post, nil
}

// GetWithComments loads a post, its author and its comments oldest first.
func (r *postRepository) GetWithComments(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := conn(ctx, r.db).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC").Order("comments.id ASC")
		}).
		Preload("Comments.Author").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, wrap(err, "Post", id)
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// Feed lists posts newest first. A nil authorIDs means every author.
func (r *postRepository) Feed(ctx context.Context, authorIDs []string, cur *pagination.Cursor, limit int) ([]*models.Post, error) {
	q := conn(ctx, r.db).Preload("Author")
	if authorIDs != nil {
		q = q.Where("posts.author_id IN ?", authorIDs)
	}

	var posts []*models.Post
	if err := q.Scopes(pagination.Scope("posts", cur, limit)).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Clap increments the like counter in a single UPDATE and reads back the
// new value. Callers run it inside a transaction.
func (r *postRepository) Clap(ctx context.Context, id string) (int, string, error) {
	db := conn(ctx, r.db)

	res := db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if res.Error != nil {
		return 0, "", models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, "", models.NewNotFoundError("Post", id)
	}

	var row struct {
		LikeCount int
		AuthorID  string
	}
	if err := db.Model(&models.Post{}).Select("like_count", "author_id").Where("id = ?", id).Take(&row).Error; err != nil {
		return 0, "", wrap(err, "Post", id)
	}
	return row.LikeCount, row.AuthorID, nil
}

func (r *postRepository) Search(ctx context.Context, query string, cur *pagination.Cursor, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := conn(ctx, r.db).
		Preload("Author").
		Where(`LOWER(posts.content) LIKE ? ESCAPE '\'`, escapeLike(query)).
		Scopes(pagination.Scope("posts", cur, limit)).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ScanTagged returns the content of posts that carry a hashtag and mention
// query, newest first, batch+1 rows at a time.
func (r *postRepository) ScanTagged(ctx context.Context, query string, cur *pagination.Cursor, batch int) ([]*models.Post, error) {
	var posts []*models.Post
	err := conn(ctx, r.db).
		Select("posts.id", "posts.content", "posts.created_at").
		Where("posts.content LIKE ?", "%#%").
		Where(`LOWER(posts.content) LIKE ? ESCAPE '\'`, escapeLike(query)).
		Scopes(pagination.Scope("posts", cur, batch)).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
