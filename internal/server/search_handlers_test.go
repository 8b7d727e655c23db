package server

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"socialhub/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token("searcher")
	testutil.CreateUser(t, ts.db, "reacher")
	testutil.CreatePost(t, ts.db, "reacher", "Loving #React today", testutil.BaseTime)
	testutil.CreatePost(t, ts.db, "reacher", "#preact is small", testutil.BaseTime.Add(time.Minute))
	testutil.CreatePost(t, ts.db, "reacher", "nothing here", testutil.BaseTime.Add(2*time.Minute))

	t.Run("combined", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/search?q=rea", tok, nil)
		require.Equal(t, fiber.StatusOK, res.Status)
		assert.Len(t, items(t, res.Body, "posts"), 2)
		users := items(t, res.Body, "users")
		require.Len(t, users, 1)
		assert.Equal(t, "u_reacher", users[0]["username"])
		assert.NotContains(t, res.Body, "tags")
		assert.NotContains(t, res.Body, "nextCursor")
	})

	t.Run("posts only pages with cursor", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/search?q=rea&type=posts&limit=1", tok, nil)
		require.Equal(t, fiber.StatusOK, res.Status)
		posts := items(t, res.Body, "posts")
		require.Len(t, posts, 1)
		assert.Equal(t, "#preact is small", posts[0]["content"])
		assert.NotContains(t, res.Body, "users")
		next := res.Body["nextCursor"].(string)
		assert.Equal(t, next, res.Body["postsNextCursor"])

		res = ts.do(http.MethodGet, "/api/search?q=rea&type=posts&limit=1&cursor="+url.QueryEscape(next), tok, nil)
		require.Equal(t, fiber.StatusOK, res.Status)
		posts = items(t, res.Body, "posts")
		require.Len(t, posts, 1)
		assert.Equal(t, "Loving #React today", posts[0]["content"])
		assert.NotContains(t, res.Body, "nextCursor")
	})

	t.Run("tags", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/search?q=REA&type=tags", tok, nil)
		require.Equal(t, fiber.StatusOK, res.Status)
		assert.ElementsMatch(t, []any{"react", "preact"}, res.Body["tags"])
		assert.NotContains(t, res.Body, "posts")
	})

	t.Run("validation", func(t *testing.T) {
		for _, q := range []string{"/api/search", "/api/search?q=%20%20", "/api/search?q=x&type=groups"} {
			res := ts.do(http.MethodGet, q, tok, nil)
			assert.Equal(t, fiber.StatusBadRequest, res.Status, q)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		res := ts.do(http.MethodGet, "/api/search?q=rea", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, res.Status)
	})
}
