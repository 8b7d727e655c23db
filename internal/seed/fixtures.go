package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"socialhub/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixtures is a hand-written data set loaded from YAML. Users are referenced
// by their id everywhere else in the file.
type Fixtures struct {
	Users   []FixtureUser   `yaml:"users"`
	Follows []FixtureFollow `yaml:"follows"`
	Posts   []FixturePost   `yaml:"posts"`
}

// FixtureUser is a user row.
type FixtureUser struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Bio      string `yaml:"bio"`
	Location string `yaml:"location"`
	Website  string `yaml:"website"`
}

// FixtureFollow is one follow edge.
type FixtureFollow struct {
	Follower  string `yaml:"follower"`
	Following string `yaml:"following"`
}

// FixturePost is a post with its engagement.
type FixturePost struct {
	Author       string           `yaml:"author"`
	Content      string           `yaml:"content"`
	Privacy      string           `yaml:"privacy"`
	Images       []string         `yaml:"images"`
	Claps        int              `yaml:"claps"`
	BookmarkedBy []string         `yaml:"bookmarkedBy"`
	Comments     []FixtureComment `yaml:"comments"`
}

// FixtureComment is a comment on a FixturePost.
type FixtureComment struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
}

// LoadFixtures decodes fixtures from r and checks their references.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadFixtures(f)
}

func (fx *Fixtures) validate() error {
	known := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		if u.ID == "" || u.Username == "" {
			return fmt.Errorf("users[%d]: id and username are required", i)
		}
		if known[u.ID] {
			return fmt.Errorf("users[%d]: duplicate id %q", i, u.ID)
		}
		known[u.ID] = true
	}

	ref := func(where, id string) error {
		if !known[id] {
			return fmt.Errorf("%s: unknown user %q", where, id)
		}
		return nil
	}
	for i, f := range fx.Follows {
		if err := ref(fmt.Sprintf("follows[%d].follower", i), f.Follower); err != nil {
			return err
		}
		if err := ref(fmt.Sprintf("follows[%d].following", i), f.Following); err != nil {
			return err
		}
		if f.Follower == f.Following {
			return fmt.Errorf("follows[%d]: %q cannot follow themselves", i, f.Follower)
		}
	}
	for i, p := range fx.Posts {
		if err := ref(fmt.Sprintf("posts[%d].author", i), p.Author); err != nil {
			return err
		}
		switch models.Privacy(strings.ToUpper(p.Privacy)) {
		case "", models.PrivacyPublic, models.PrivacyFollowers:
		default:
			return fmt.Errorf("posts[%d]: invalid privacy %q", i, p.Privacy)
		}
		if len(p.Images) > models.MaxPostImages {
			return fmt.Errorf("posts[%d]: at most %d images", i, models.MaxPostImages)
		}
		for j, b := range p.BookmarkedBy {
			if err := ref(fmt.Sprintf("posts[%d].bookmarkedBy[%d]", i, j), b); err != nil {
				return err
			}
		}
		for j, c := range p.Comments {
			if err := ref(fmt.Sprintf("posts[%d].comments[%d].author", i, j), c.Author); err != nil {
				return err
			}
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ApplyFixtures writes fx in one transaction, ignoring DryRun. Users that
// already exist are left untouched; posts are always added.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) (*Summary, error) {
	sum := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opts := s.opts
		opts.DryRun = false
		f := NewFactory(tx, opts)
		f.fake = s.factory.fake

		users := make(map[string]*models.User, len(fx.Users))
		for _, fu := range fx.Users {
			u := &models.User{
				ID:       fu.ID,
				Username: fu.Username,
				Name:     fu.Name,
				Email:    fu.Email,
				Bio:      optional(fu.Bio),
				Location: optional(fu.Location),
				Website:  optional(fu.Website),
			}
			if u.Email == "" {
				u.Email = fu.Username + "@example.com"
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(u)
			if res.Error != nil {
				return fmt.Errorf("user %s: %w", fu.ID, res.Error)
			}
			sum.Users += int(res.RowsAffected)
			users[fu.ID] = u
		}

		for _, ff := range fx.Follows {
			if err := f.CreateFollow(ctx, users[ff.Follower], users[ff.Following]); err != nil {
				return fmt.Errorf("follow %s -> %s: %w", ff.Follower, ff.Following, err)
			}
			sum.Follows++
		}

		for i, fp := range fx.Posts {
			author := users[fp.Author]
			privacy := models.Privacy(strings.ToUpper(fp.Privacy))
			if privacy == "" {
				privacy = models.PrivacyPublic
			}
			images := fp.Images
			if images == nil {
				images = []string{}
			}
			post := &models.Post{
				AuthorID:  author.ID,
				Content:   fp.Content,
				ImageURLs: images,
				Privacy:   privacy,
			}
			if err := tx.Create(post).Error; err != nil {
				return fmt.Errorf("posts[%d]: %w", i, err)
			}
			sum.Posts++

			for _, fc := range fp.Comments {
				_, err := f.CreateComment(ctx, users[fc.Author], post, func(c *models.Comment) {
					c.Content = fc.Content
					c.CreatedAt = models.Now()
				})
				if err != nil {
					return fmt.Errorf("posts[%d] comment: %w", i, err)
				}
				sum.Comments++
			}
			for _, b := range fp.BookmarkedBy {
				if err := f.CreateBookmark(ctx, users[b], post); err != nil {
					return fmt.Errorf("posts[%d] bookmark: %w", i, err)
				}
				sum.Bookmarks++
			}
			if fp.Claps > 0 {
				// Fixture claps are anonymous; attribute them to the author so
				// no notification is generated.
				if err := f.Clap(ctx, author, post, fp.Claps); err != nil {
					return fmt.Errorf("posts[%d] claps: %w", i, err)
				}
				sum.Claps += fp.Claps
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}
