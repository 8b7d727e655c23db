package seed

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostKind selects the shape of a generated post.
type PostKind string

const (
	PostKindText    PostKind = "text"
	PostKindImage   PostKind = "image"
	PostKindGallery PostKind = "gallery"
)

var (
	hashtags = []string{
		"golang", "react", "preact", "travel", "coffee", "music", "photography",
		"fitness", "books", "gaming", "linux", "design", "food", "startups",
	}

	usernameStrip = regexp.MustCompile(`[^a-z0-9_]+`)
)

// Factory builds domain entities and persists them to the database.
// In DryRun mode nothing is written and ids are still assigned.
type Factory struct {
	db   *gorm.DB
	opts Options
	fake *gofakeit.Faker
	now  func() time.Time
	seq  int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, fake: gofakeit.New(seed), now: models.Now}
}

func (f *Factory) write(ctx context.Context) *gorm.DB {
	return f.db.WithContext(ctx)
}

// username derives a valid unique handle from a fake one.
func (f *Factory) username() string {
	f.seq++
	base := usernameStrip.ReplaceAllString(strings.ToLower(f.fake.Username()), "")
	if len(base) > 20 {
		base = base[:20]
	}
	if len(base) < 3 {
		base = "user"
	}
	return fmt.Sprintf("%s_%d", base, f.seq)
}

// pastTime returns an instant within the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.fake.Number(0, maxDays*24*60)) * time.Minute
	return f.now().Add(-back)
}

// CreateUser constructs and persists a sample models.User.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	bio := f.fake.Sentence(8)
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.fake.UUID())
	user := &models.User{
		ID:        "seed|" + f.fake.UUID(),
		Username:  f.username(),
		Name:      f.fake.Name(),
		Bio:       &bio,
		AvatarURL: &avatar,
		CreatedAt: f.pastTime(),
	}
	user.Email = user.Username + "@example.com"
	if f.fake.Bool() {
		city := f.fake.City()
		user.Location = &city
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		return user, nil
	}
	if err := f.write(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post of the given kind without persisting it.
func (f *Factory) BuildPost(author *models.User, kind PostKind, overrides ...func(*models.Post)) *models.Post {
	tags := make([]string, 0, 2)
	for range f.fake.Number(0, 2) {
		tags = append(tags, "#"+hashtags[f.fake.Number(0, len(hashtags)-1)])
	}
	content := f.fake.Paragraph(1, f.fake.Number(1, 3), 10, " ")
	if len(tags) > 0 {
		content += " " + strings.Join(tags, " ")
	}
	if len(content) > models.MaxPostContentLength {
		content = content[:models.MaxPostContentLength]
	}

	post := &models.Post{
		ID:        models.NewID(),
		AuthorID:  author.ID,
		Content:   content,
		ImageURLs: []string{},
		Privacy:   models.PrivacyPublic,
		CreatedAt: f.pastTime(),
	}

	var images int
	switch kind {
	case PostKindImage:
		images = 1
	case PostKindGallery:
		images = f.fake.Number(2, models.MaxPostImages)
	}
	for range images {
		post.ImageURLs = append(post.ImageURLs, fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.fake.UUID()))
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in chunks of BatchSize.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.write(ctx).CreateInBatches(posts, batch).Error
}

// CreateComment constructs and persists a sample comment on post.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		AuthorID:  author.ID,
		Content:   f.fake.Sentence(f.fake.Number(3, 15)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.fake.Number(1, 600)) * time.Minute),
	}
	if comment.CreatedAt.After(f.now()) {
		comment.CreatedAt = f.now()
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = models.NewID()
		return comment, nil
	}
	if err := f.write(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, f.notify(ctx, post.AuthorID, author.ID, models.NotificationComment, models.NotificationPayload{
		PostID:     post.ID,
		CommentID:  comment.ID,
		FromUserID: author.ID,
	})
}

// CreateFollow persists follower -> following. Existing edges are kept.
func (f *Factory) CreateFollow(ctx context.Context, follower, following *models.User) error {
	if follower.ID == following.ID || f.opts.DryRun {
		return nil
	}
	edge := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	res := f.write(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return f.notify(ctx, following.ID, follower.ID, models.NotificationFollow, models.NotificationPayload{
		FromUserID: follower.ID,
	})
}

// CreateBookmark persists a bookmark of post by user.
func (f *Factory) CreateBookmark(ctx context.Context, user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.write(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Bookmark{UserID: user.ID, PostID: post.ID}).Error
}

// Clap adds n likes from liker to post.
func (f *Factory) Clap(ctx context.Context, liker *models.User, post *models.Post, n int) error {
	if n <= 0 {
		return nil
	}
	post.LikeCount += n
	if f.opts.DryRun {
		return nil
	}
	err := f.write(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", n)).Error
	if err != nil {
		return err
	}
	return f.notify(ctx, post.AuthorID, liker.ID, models.NotificationLike, models.NotificationPayload{
		PostID:     post.ID,
		FromUserID: liker.ID,
	})
}

// notify records a notification for recipient unless the actor is the
// recipient.
func (f *Factory) notify(ctx context.Context, recipient, actor string, typ models.NotificationType, payload models.NotificationPayload) error {
	if recipient == actor {
		return nil
	}
	return f.write(ctx).Create(&models.Notification{
		UserID:  recipient,
		Type:    typ,
		Payload: payload,
		IsRead:  f.fake.Number(0, 3) == 0,
	}).Error
}
