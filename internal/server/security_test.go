package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"socialhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})

	// Apply just the middleware we want to test
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	t.Run("Security Headers", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
		assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	})

	t.Run("Panics become 500", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(http.MethodPut, "/api/users/me", ts.token("alice"), `{"name":"Alice","isAdmin":true}`)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, `Unknown field "isAdmin"`, res.Body["message"])
	assert.Equal(t, "isAdmin", res.Body["extra"].(map[string]any)["field"])
}
