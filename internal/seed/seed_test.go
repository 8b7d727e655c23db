package seed

import (
	"context"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/testutil"
)

func TestComputeCounts(t *testing.T) {
	tests := []struct {
		name                 string
		total                int
		dist                 Distribution
		text, image, gallery int
	}{
		{"default", 10, defaultDistribution, 6, 3, 1},
		{"leftover goes to text", 10, Distribution{Text: 50, Image: 25, Gallery: 25}, 6, 2, 2},
		{"all images", 4, Distribution{Image: 1}, 0, 4, 0},
		{"empty distribution", 3, Distribution{}, 3, 0, 0},
		{"nothing", 0, defaultDistribution, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, image, gallery := computeCounts(tt.total, tt.dist)
			if text+image+gallery != tt.total {
				t.Fatalf("sum mismatch: got %d", text+image+gallery)
			}
			if text != tt.text || image != tt.image || gallery != tt.gallery {
				t.Fatalf("unexpected counts: text=%d, image=%d, gallery=%d", text, image, gallery)
			}
		})
	}
}

func TestBuildPost_KindsAndTimestamps(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 30, RandSeed: 7}
	f := NewFactory(nil, opts)
	user, err := f.CreateUser(context.Background())
	if err != nil {
		t.Fatalf("dry-run CreateUser: %v", err)
	}
	if len(user.Username) < 3 || len(user.Username) > 30 {
		t.Fatalf("username out of range: %q", user.Username)
	}

	cases := map[PostKind][2]int{
		PostKindText:    {0, 0},
		PostKindImage:   {1, 1},
		PostKindGallery: {2, models.MaxPostImages},
	}
	for kind, bounds := range cases {
		p := f.BuildPost(user, kind)
		if n := len(p.ImageURLs); n < bounds[0] || n > bounds[1] {
			t.Fatalf("%s post has %d images", kind, n)
		}
		if p.AuthorID != user.ID || p.ID == "" {
			t.Fatalf("%s post not attributed: %+v", kind, p)
		}
		if time.Since(p.CreatedAt) > (time.Duration(opts.MaxDays)+1)*24*time.Hour {
			t.Fatalf("created_at too old: %v", p.CreatedAt)
		}
		if len(p.Content) > models.MaxPostContentLength {
			t.Fatalf("content too long: %d", len(p.Content))
		}
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	s := NewSeeder(db, Options{NumUsers: 6, NumPosts: 10, BatchSize: 4, RandSeed: 42})
	sum, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	count := func(model any) int {
		t.Helper()
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		return int(n)
	}

	if sum.Users != 6 || count(&models.User{}) != 6 {
		t.Fatalf("expected 6 users, summary=%s", sum)
	}
	if sum.Posts != 10 || count(&models.Post{}) != 10 {
		t.Fatalf("expected 10 posts, summary=%s", sum)
	}
	if got := count(&models.Follow{}); got != sum.Follows || got == 0 {
		t.Fatalf("follows: table=%d summary=%d", got, sum.Follows)
	}
	if got := count(&models.Comment{}); got != sum.Comments {
		t.Fatalf("comments: table=%d summary=%d", got, sum.Comments)
	}
	if got := count(&models.Bookmark{}); got != sum.Bookmarks {
		t.Fatalf("bookmarks: table=%d summary=%d", got, sum.Bookmarks)
	}

	var likes int64
	if err := db.Model(&models.Post{}).Select("COALESCE(SUM(like_count), 0)").Scan(&likes).Error; err != nil {
		t.Fatalf("sum likes: %v", err)
	}
	if int(likes) != sum.Claps {
		t.Fatalf("likes: table=%d summary=%d", likes, sum.Claps)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	for _, m := range []any{&models.Notification{}, &models.Bookmark{}, &models.Comment{}, &models.Follow{}, &models.Post{}, &models.User{}} {
		if n := count(m); n != 0 {
			t.Fatalf("%T not cleared: %d rows", m, n)
		}
	}
}

func TestFactory_CreateFollowIsIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	f := NewFactory(db, Options{RandSeed: 1})

	a, err := f.CreateUser(ctx)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	b, err := f.CreateUser(ctx)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	for range 2 {
		if err := f.CreateFollow(ctx, a, b); err != nil {
			t.Fatalf("CreateFollow: %v", err)
		}
	}
	if err := f.CreateFollow(ctx, a, a); err != nil {
		t.Fatalf("self follow should be skipped: %v", err)
	}

	var follows, notes int64
	db.Model(&models.Follow{}).Count(&follows)
	db.Model(&models.Notification{}).Where("user_id = ?", b.ID).Count(&notes)
	if follows != 1 || notes != 1 {
		t.Fatalf("expected 1 follow and 1 notification, got %d and %d", follows, notes)
	}
}
