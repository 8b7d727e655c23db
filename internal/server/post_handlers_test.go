package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token("alice")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]any{"content": "  Hello #world  "},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Images only",
			body:           map[string]any{"imageUrls": []string{"https://cdn.test/a.png"}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Empty post",
			body:           map[string]any{"content": "   "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Bad privacy",
			body:           map[string]any{"content": "x", "privacy": "SECRET"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid body",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.do(http.MethodPost, "/api/posts", tok, tt.body)
			assert.Equal(t, tt.expectedStatus, res.Status, string(res.Raw))
		})
	}

	res := ts.do(http.MethodPost, "/api/posts", "", map[string]any{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	var post models.Post
	require.NoError(t, ts.db.Where("author_id = ?", "alice").Order("created_at").First(&post).Error)
	assert.Equal(t, "Hello #world", post.Content)
	assert.Equal(t, models.PrivacyPublic, post.Privacy)
}

func TestGetFeed_Paginates(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateUser(t, ts.db, "alice")
	for i := range 3 {
		testutil.CreatePost(t, ts.db, "alice", fmt.Sprintf("post %d", i), testutil.BaseTime.Add(time.Duration(i)*time.Minute))
	}

	res := ts.do(http.MethodGet, "/api/posts?limit=2", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	posts := items(t, res.Body, "posts")
	require.Len(t, posts, 2)
	assert.Equal(t, "post 2", posts[0]["content"])
	assert.Equal(t, "post 1", posts[1]["content"])
	assert.Equal(t, "u_alice", posts[0]["author"].(map[string]any)["username"])
	next, ok := res.Body["nextCursor"].(string)
	require.True(t, ok)

	res = ts.do(http.MethodGet, "/api/posts?limit=2&cursor="+url.QueryEscape(next), "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	posts = items(t, res.Body, "posts")
	require.Len(t, posts, 1)
	assert.Equal(t, "post 0", posts[0]["content"])
	assert.NotContains(t, res.Body, "nextCursor")

	res = ts.do(http.MethodGet, "/api/posts?cursor=yesterday", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	res = ts.do(http.MethodGet, "/api/posts?tab=TRENDING", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
}

func TestGetPost(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateUser(t, ts.db, "alice")
	post := testutil.CreatePost(t, ts.db, "alice", "hello", testutil.BaseTime)

	res := ts.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	require.Contains(t, res.Body, "comments")
	assert.Empty(t, items(t, res.Body, "comments"))
	assert.Equal(t, "hello", res.Body["content"])

	res = ts.do(http.MethodPost, "/api/posts/"+post.ID+"/comment", ts.token("bob"), map[string]any{"content": "first!"})
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, "first!", res.Body["content"])
	assert.Equal(t, "bob", res.Body["author"].(map[string]any)["username"])

	res = ts.do(http.MethodPost, "/api/comments/"+post.ID, ts.token("bob"), map[string]any{"content": "second"})
	require.Equal(t, fiber.StatusCreated, res.Status)

	res = ts.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	comments := items(t, res.Body, "comments")
	require.Len(t, comments, 2)
	assert.Equal(t, "first!", comments[0]["content"])

	res = ts.do(http.MethodGet, "/api/posts/"+models.NewID(), "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
	assert.Equal(t, "Post not found", res.Body["message"])
}

func TestClapPost(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateUser(t, ts.db, "alice")
	post := testutil.CreatePost(t, ts.db, "alice", "clap me", testutil.BaseTime)
	bob := ts.token("bob")

	for want := 1; want <= 3; want++ {
		res := ts.do(http.MethodPost, "/api/posts/"+post.ID+"/like", bob, nil)
		require.Equal(t, fiber.StatusOK, res.Status)
		assert.Equal(t, float64(want), res.Body["likeCount"])
	}

	var n int64
	require.NoError(t, ts.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", "alice", models.NotificationLike).Count(&n).Error)
	assert.Equal(t, int64(3), n)

	res := ts.do(http.MethodPost, "/api/posts/"+models.NewID()+"/like", bob, nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
}

func TestToggleBookmark_AndList(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateUser(t, ts.db, "alice")
	post := testutil.CreatePost(t, ts.db, "alice", "save me", testutil.BaseTime)
	tok := ts.token("alice")

	for _, want := range []bool{true, false, true} {
		res := ts.do(http.MethodPost, "/api/posts/"+post.ID+"/bookmark", tok, nil)
		require.Equal(t, fiber.StatusOK, res.Status)
		assert.Equal(t, want, res.Body["isBookmarked"])
	}

	res := ts.do(http.MethodGet, "/api/bookmarks", tok, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	posts := items(t, res.Body, "posts")
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0]["id"])
	assert.NotEmpty(t, posts[0]["bookmarkId"])

	res = ts.do(http.MethodPost, "/api/posts/"+models.NewID()+"/bookmark", tok, nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
}
