package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and evaluated state for the caller.
// @Summary Feature flags
// @Tags features
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(optionalUserID(c)),
	})
}

// RequireFeature hides a route behind a flag. Disabled features answer 404
// as if the route did not exist.
func (s *Server) RequireFeature(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(name, optionalUserID(c)) {
			return fiber.NewError(fiber.StatusNotFound, "Cannot "+c.Method()+" "+c.Path())
		}
		return c.Next()
	}
}
