package server

import (
	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts
// @Summary List the feed
// @Description Posts newest first. FOLLOWING restricts to accounts the caller follows.
// @Tags posts
// @Produce json
// @Param tab query string false "ALL or FOLLOWING"
// @Param limit query int false "Page size (1-50)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} object{posts=[]models.Post,nextCursor=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.postService.ListFeed(c.UserContext(), service.ListFeedInput{
		Tab:         c.Query("tab"),
		Limit:       queryLimit(c),
		Cursor:      c.Query("cursor"),
		RequesterID: optionalUserID(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(pageResponse("posts", page))
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{content=string,imageUrls=[]string,privacy=string} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	in.AuthorID = userID

	post, err := s.postService.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post with its comments
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetWithComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(models.NewPostDetail(post))
}

// ClapPost handles POST /api/posts/:id/like
// @Summary Clap for a post
// @Description Every call adds one clap.
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{likeCount=int}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) ClapPost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	count, err := s.postService.Clap(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"likeCount": count})
}

// ToggleBookmark handles POST /api/posts/:id/bookmark
// @Summary Bookmark or unbookmark a post
// @Tags bookmarks
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{isBookmarked=bool}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/bookmark [post]
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	on, err := s.bookmarkService.Toggle(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"isBookmarked": on})
}

// GetBookmarks handles GET /api/bookmarks
// @Summary List bookmarked posts, most recently bookmarked first
// @Tags bookmarks
// @Produce json
// @Param limit query int false "Page size (1-50)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} object{posts=[]models.Post,nextCursor=string}
// @Security BearerAuth
// @Router /bookmarks [get]
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := s.bookmarkService.List(c.UserContext(), service.ListBookmarksInput{
		UserID: userID,
		Limit:  queryLimit(c),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		return err
	}
	return c.JSON(pageResponse("posts", page))
}
