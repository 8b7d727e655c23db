// Package middleware provides request-scoped logging, tracing, rate limiting
// and authentication helpers for the HTTP server.
package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the Fiber locals key holding the authenticated user's id.
const UserIDLocal = "userID"

// TokenCookie is consulted when no Authorization header is present.
const TokenCookie = "token"

// BearerToken extracts the token from "Authorization: Bearer <token>",
// falling back to the token cookie. It returns "" when neither is present
// or the header is malformed.
func BearerToken(c *fiber.Ctx) string {
	if header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(c.Cookies(TokenCookie))
}

// SetUserID records the authenticated user on the request and its context.
func SetUserID(c *fiber.Ctx, userID string) {
	c.Locals(UserIDLocal, userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// UserID returns the authenticated user's id, if any.
func UserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(UserIDLocal).(string)
	return id, ok && id != ""
}
