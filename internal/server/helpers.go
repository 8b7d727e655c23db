package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated user. Handlers behind
// AuthRequired can rely on it being set.
func currentUserID(c *fiber.Ctx) (string, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization required")
	}
	return id, nil
}

// optionalUserID returns the caller when OptionalAuth identified one.
func optionalUserID(c *fiber.Ctx) string {
	id, _ := middleware.UserID(c)
	return id
}

// queryLimit parses the limit query parameter (or its alias take) with the
// shared clamping rules.
func queryLimit(c *fiber.Ctx) int {
	return pagination.ClampLimit(c.Query("limit", c.Query("take")))
}

// queryBool accepts "true" and "1", case-insensitively.
func queryBool(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1":
		return true
	}
	return false
}

// parseBody decodes a JSON request body into dest.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// parseStrictBody decodes a JSON object into dest and rejects fields dest
// does not declare.
func parseStrictBody(c *fiber.Ctx, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		msg := "Invalid request body"
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return models.NewValidationError("Unknown field " + field).
				WithExtra("field", strings.Trim(field, `"`))
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			msg = "Malformed JSON"
		}
		return models.NewValidationError(msg)
	}
	if dec.More() {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// pageResponse renders a page under key with an optional nextCursor.
func pageResponse[T any](key string, page pagination.Page[T]) fiber.Map {
	body := fiber.Map{key: page.Items}
	if page.NextCursor != "" {
		body["nextCursor"] = page.NextCursor
	}
	return body
}
