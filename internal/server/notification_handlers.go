package server

import (
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// @Summary List the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Param limit query int false "Page size (1-50)"
// @Param cursor query string false "Cursor from a previous page"
// @Param unreadOnly query bool false "Only unread notifications"
// @Success 200 {object} object{notifications=[]models.Notification,nextCursor=string}
// @Security BearerAuth
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := s.notificationService.List(c.UserContext(), service.ListNotificationsInput{
		UserID:     userID,
		Limit:      queryLimit(c),
		Cursor:     c.Query("cursor"),
		UnreadOnly: queryBool(c, "unreadOnly"),
	})
	if err != nil {
		return err
	}
	return c.JSON(pageResponse("notifications", page))
}

// MarkAllNotificationsRead handles POST /api/notifications/mark-all-read
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Success 200 {object} object{updated=int}
// @Security BearerAuth
// @Router /notifications/mark-all-read [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	n, err := s.notificationService.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": n})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} object{id=string,isRead=bool}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := s.notificationService.MarkOneRead(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "isRead": true})
}
