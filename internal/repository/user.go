package repository

import (
	"context"
	"errors"

	"socialhub/internal/models"
	"socialhub/internal/pagination"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, fields map[string]any) (*models.User, error)
	Counts(ctx context.Context, id string) (models.ProfileCounts, error)
	Search(ctx context.Context, query string, cur *pagination.Cursor, limit int) ([]models.UserSummary, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrap(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrap(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return wrap(conn(ctx, r.db).Create(user).Error, "User", user.ID)
}

// Update applies the given column values and returns the stored user.
func (r *userRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		fields["updated_at"] = models.Now()
		res := conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, wrap(res.Error, "User", id)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) Counts(ctx context.Context, id string) (models.ProfileCounts, error) {
	var counts models.ProfileCounts
	db := conn(ctx, r.db)

	if err := db.Model(&models.Follow{}).Where("following_id = ?", id).Count(&counts.Followers).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", id).Count(&counts.Following).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	if err := db.Model(&models.Post{}).Where("author_id = ?", id).Count(&counts.Posts).Error; err != nil {
		return counts, models.NewInternalError(err)
	}
	return counts, nil
}

// Search matches username or name case-insensitively. It returns up to
// limit+1 rows for pagination.Trim.
func (r *userRepository) Search(ctx context.Context, query string, cur *pagination.Cursor, limit int) ([]models.UserSummary, error) {
	pattern := escapeLike(query)
	var users []models.UserSummary
	err := conn(ctx, r.db).
		Where(`(LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(users.name) LIKE ? ESCAPE '\')`, pattern, pattern).
		Scopes(pagination.Scope("users", cur, limit)).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IsNotFound reports whether err is a not-found application error.
func IsNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
