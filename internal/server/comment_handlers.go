package server

import (
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comment and POST /api/comments/:id,
// where :id is the post being commented on.
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param comment body service.AddCommentInput true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comment [post]
// @Router /comments/{id} [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in service.AddCommentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	in.PostID = c.Params("id")
	in.AuthorID = userID

	comment, err := s.commentService.AddComment(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
