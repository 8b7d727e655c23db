// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers  int
	NumPosts  int
	MaxDays   int
	BatchSize int
	// RandSeed makes runs reproducible when non-zero.
	RandSeed int64
	DryRun   bool
	// Distribution splits NumPosts by kind. Zero uses defaultDistribution.
	Distribution Distribution
}

// Distribution is the percentage share of each post kind.
type Distribution struct {
	Text    int
	Image   int
	Gallery int
}

var defaultDistribution = Distribution{Text: 60, Image: 30, Gallery: 10}

// Summary counts what a seeding run created.
type Summary struct {
	Users     int
	Follows   int
	Posts     int
	Comments  int
	Bookmarks int
	Claps     int
}

func (s Summary) String() string {
	return fmt.Sprintf("users=%d follows=%d posts=%d comments=%d bookmarks=%d claps=%d",
		s.Users, s.Follows, s.Posts, s.Comments, s.Bookmarks, s.Claps)
}

// Seeder populates a database with a connected social graph.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// clearOrder lists tables children first so plain DELETE respects foreign keys.
var clearOrder = []string{"notifications", "bookmarks", "comments", "follows", "posts", "users"}

// ClearAll removes every row the seeder can create.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE notifications, bookmarks, comments, follows, posts, users CASCADE`).Error
	}
	for _, table := range clearOrder {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds users, their follow graph and engagement on posts.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	users, follows, err := s.SeedSocialMesh(ctx, s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}

	sum, err := s.SeedEngagement(ctx, users, s.opts.NumPosts)
	if err != nil {
		return nil, err
	}
	sum.Users = len(users)
	sum.Follows = follows

	log.Printf("🎉 Database seeding completed: %s", sum)
	return sum, nil
}

// SeedSocialMesh creates n users and has each follow a random handful of the
// others. It returns the users and the number of follow edges created.
func (s *Seeder) SeedSocialMesh(ctx context.Context, n int) ([]*models.User, int, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
		if (i+1)%100 == 0 {
			log.Printf("Created %d users...", i+1)
		}
	}
	log.Printf("✓ %d users created", len(users))

	if len(users) < 2 {
		return users, 0, nil
	}

	fake := s.factory.fake
	maxFollows := min(len(users)-1, 8)
	follows := 0
	for _, follower := range users {
		seen := map[string]bool{follower.ID: true}
		for range fake.Number(1, maxFollows) {
			target := users[fake.Number(0, len(users)-1)]
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			if err := s.factory.CreateFollow(ctx, follower, target); err != nil {
				return nil, 0, fmt.Errorf("follow %s -> %s: %w", follower.ID, target.ID, err)
			}
			follows++
		}
	}
	log.Printf("✓ %d follows created", follows)
	return users, follows, nil
}

// SeedEngagement creates numPosts posts spread over users, then comments,
// bookmarks and claps on them.
func (s *Seeder) SeedEngagement(ctx context.Context, users []*models.User, numPosts int) (*Summary, error) {
	sum := &Summary{}
	if len(users) == 0 || numPosts <= 0 {
		return sum, nil
	}

	dist := s.opts.Distribution
	if dist == (Distribution{}) {
		dist = defaultDistribution
	}
	text, image, gallery := computeCounts(numPosts, dist)

	fake := s.factory.fake
	posts := make([]*models.Post, 0, numPosts)
	plan := []struct {
		kind  PostKind
		count int
	}{{PostKindText, text}, {PostKindImage, image}, {PostKindGallery, gallery}}
	for _, step := range plan {
		kind := step.kind
		for range step.count {
			author := users[fake.Number(0, len(users)-1)]
			posts = append(posts, s.factory.BuildPost(author, kind, func(p *models.Post) {
				if fake.Number(1, 10) == 1 {
					p.Privacy = models.PrivacyFollowers
				}
			}))
		}
	}
	if err := s.factory.CreatePostsBatch(ctx, posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)
	log.Printf("✓ %d posts created", sum.Posts)

	for _, post := range posts {
		for range fake.Number(0, 3) {
			author := users[fake.Number(0, len(users)-1)]
			if _, err := s.factory.CreateComment(ctx, author, post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			sum.Comments++
		}

		if fake.Number(1, 4) == 1 {
			reader := users[fake.Number(0, len(users)-1)]
			if err := s.factory.CreateBookmark(ctx, reader, post); err != nil {
				return nil, fmt.Errorf("failed to create bookmark: %w", err)
			}
			sum.Bookmarks++
		}

		if claps := fake.Number(0, 5); claps > 0 {
			fan := users[fake.Number(0, len(users)-1)]
			if err := s.factory.Clap(ctx, fan, post, claps); err != nil {
				return nil, fmt.Errorf("failed to clap: %w", err)
			}
			sum.Claps += claps
		}
	}
	log.Printf("✓ %d comments, %d bookmarks, %d claps", sum.Comments, sum.Bookmarks, sum.Claps)
	return sum, nil
}

// computeCounts splits total by d's percentages. Rounding leftovers go to
// text posts so the parts always sum to total.
func computeCounts(total int, d Distribution) (text, image, gallery int) {
	sum := d.Text + d.Image + d.Gallery
	if sum <= 0 || total <= 0 {
		return max(total, 0), 0, 0
	}
	image = total * d.Image / sum
	gallery = total * d.Gallery / sum
	text = total - image - gallery
	return text, image, gallery
}
