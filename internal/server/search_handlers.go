package server

import (
	"strings"

	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/search. Only the sub-results that ran appear in
// the response.
// @Summary Search posts, users and hashtags
// @Tags search
// @Produce json
// @Param q query string true "Query (1-100 characters)"
// @Param type query string false "posts, users or tags; default posts and users"
// @Param limit query int false "Page size (1-50)"
// @Param cursor query string false "Cursor when a single type is searched"
// @Param postsCursor query string false "Posts cursor"
// @Param usersCursor query string false "Users cursor"
// @Success 200 {object} object{posts=[]models.Post,users=[]models.UserSummary,tags=[]string,nextCursor=string,postsNextCursor=string,usersNextCursor=string}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /search [get]
func (s *Server) Search(c *fiber.Ctx) error {
	res, err := s.searchService.Search(c.UserContext(), service.SearchInput{
		Query:       c.Query("q"),
		Type:        strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Limit:       queryLimit(c),
		Cursor:      c.Query("cursor"),
		PostsCursor: c.Query("postsCursor"),
		UsersCursor: c.Query("usersCursor"),
	})
	if err != nil {
		return err
	}

	body := fiber.Map{}
	if res.Posts != nil {
		body["posts"] = res.Posts
	}
	if res.Users != nil {
		body["users"] = res.Users
	}
	if res.Tags != nil {
		body["tags"] = res.Tags
	}
	if res.NextCursor != "" {
		body["nextCursor"] = res.NextCursor
	}
	if res.PostsNextCursor != "" {
		body["postsNextCursor"] = res.PostsNextCursor
	}
	if res.UsersNextCursor != "" {
		body["usersNextCursor"] = res.UsersNextCursor
	}
	return c.JSON(body)
}
