package server

import (
	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user's private profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := s.userService.GetMe(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Unknown body fields are
// rejected; null clears a nullable field.
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,username=string,bio=string,avatarUrl=string,coverUrl=string,location=string,website=string} true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in service.UpdateMeInput
	if err := parseStrictBody(c, &in); err != nil {
		return err
	}

	user, err := s.userService.UpdateMe(c.UserContext(), userID, in)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Public profile with follower, following and post counts
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// ToggleFollow handles POST /api/users/:id/follow
// @Summary Follow or unfollow a user
// @Tags follows
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} object{isFollowing=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	following, err := s.followService.Toggle(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"isFollowing": following})
}

// GetFollows handles GET /api/follows?userId&type
// @Summary List followers and following
// @Description Defaults to the caller. type narrows the response to one side.
// @Tags follows
// @Produce json
// @Param userId query string false "User ID, default the caller"
// @Param type query string false "followers or following"
// @Success 200 {object} object{followers=[]models.FollowEntry,following=[]models.FollowEntry}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /follows [get]
func (s *Server) GetFollows(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	listType := c.Query("type")
	lists, err := s.followService.List(c.UserContext(), service.ListFollowsInput{
		RequesterID: userID,
		TargetID:    c.Query("userId"),
		Type:        listType,
	})
	if err != nil {
		return err
	}

	body := fiber.Map{}
	if listType != models.FollowListFollowing {
		body["followers"] = nonNil(lists.Followers)
	}
	if listType != models.FollowListFollowers {
		body["following"] = nonNil(lists.Following)
	}
	return c.JSON(body)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
