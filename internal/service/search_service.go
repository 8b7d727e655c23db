package service

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"socialhub/internal/models"
	"socialhub/internal/pagination"
	"socialhub/internal/repository"
)

// Search types.
const (
	SearchPosts = "posts"
	SearchUsers = "users"
	SearchTags  = "tags"
)

const (
	maxSearchQuery = 100
	tagScanBatch   = 200
)

var hashtagPattern = regexp.MustCompile(`#[^\s#]+`)

type SearchService struct {
	op
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewSearchService(postRepo repository.PostRepository, userRepo repository.UserRepository, timeout time.Duration) *SearchService {
	return &SearchService{
		op:       newOp("SearchService", timeout),
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

type SearchInput struct {
	Query       string
	Type        string
	Limit       int
	Cursor      string
	PostsCursor string
	UsersCursor string
}

// SearchResult carries the sub-results that ran. Nil slices did not run.
type SearchResult struct {
	Posts           []*models.Post
	Users           []models.UserSummary
	Tags            []string
	NextCursor      string
	PostsNextCursor string
	UsersNextCursor string
}

// Search runs the posts and users sub-queries, or only the one named by
// Type. Posts and users page independently; tags always start from the top.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (_ *SearchResult, err error) {
	ctx, done := s.start(ctx, "Search")
	defer done(&err)

	q := strings.TrimSpace(in.Query)
	if q == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if utf8.RuneCountInString(q) > maxSearchQuery {
		return nil, models.NewValidationError("Search query too long (max 100 characters)")
	}

	var wantPosts, wantUsers, wantTags bool
	switch in.Type {
	case "":
		wantPosts, wantUsers = true, true
	case SearchPosts:
		wantPosts = true
	case SearchUsers:
		wantUsers = true
	case SearchTags:
		wantTags = true
	default:
		return nil, models.NewValidationError("Invalid search type").WithExtra("type", in.Type)
	}
	single := wantPosts != wantUsers

	limit := boundLimit(in.Limit)
	res := &SearchResult{}

	if wantTags {
		if res.Tags, err = s.tags(ctx, q, limit); err != nil {
			return nil, err
		}
		return res, nil
	}

	if wantPosts {
		raw := in.PostsCursor
		if raw == "" && single {
			raw = in.Cursor
		}
		cur, err := pagination.ParseCursor(raw)
		if err != nil {
			return nil, err
		}
		rows, err := s.postRepo.Search(ctx, q, cur, limit)
		if err != nil {
			return nil, err
		}
		page := pagination.Trim(rows, limit)
		res.Posts, res.PostsNextCursor = page.Items, page.NextCursor
	}

	if wantUsers {
		raw := in.UsersCursor
		if raw == "" && single {
			raw = in.Cursor
		}
		cur, err := pagination.ParseCursor(raw)
		if err != nil {
			return nil, err
		}
		rows, err := s.userRepo.Search(ctx, q, cur, limit)
		if err != nil {
			return nil, err
		}
		page := pagination.Trim(rows, limit)
		res.Users, res.UsersNextCursor = page.Items, page.NextCursor
	}

	if single {
		res.NextCursor = res.PostsNextCursor + res.UsersNextCursor
	}
	return res, nil
}

// tags collects distinct hashtags containing q from the newest posts first.
func (s *SearchService) tags(ctx context.Context, q string, limit int) ([]string, error) {
	needle := strings.ToLower(q)
	seen := make(map[string]struct{}, limit)
	tags := make([]string, 0, limit)

	var cur *pagination.Cursor
	for {
		rows, err := s.postRepo.ScanTagged(ctx, q, cur, tagScanBatch)
		if err != nil {
			return nil, err
		}
		page := pagination.Trim(rows, tagScanBatch)

		for _, p := range page.Items {
			for _, tag := range ExtractHashtags(p.Content) {
				if !strings.Contains(tag, needle) {
					continue
				}
				if _, dup := seen[tag]; dup {
					continue
				}
				seen[tag] = struct{}{}
				tags = append(tags, tag)
				if len(tags) == limit {
					return tags, nil
				}
			}
		}

		if page.NextCursor == "" {
			return tags, nil
		}
		if cur, err = pagination.ParseCursor(page.NextCursor); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
}

// ExtractHashtags returns the lowercased tags of content without the '#'.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllString(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(strings.TrimPrefix(m, "#")))
	}
	return out
}
