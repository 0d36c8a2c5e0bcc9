package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cachePolicies maps path prefixes to Cache-Control values; the first match
// wins. Session state is private and changes with every action.
var cachePolicies = []struct {
	prefix string
	value  string
}{
	{"/v1/health", "no-cache"},
	{"/v1/ready", "no-cache"},
	{"/metrics", "no-store"},
	{"/v1/rules", "public, max-age=3600"},
	{"/v1/sessions/", "private, no-cache"},
	{"/docs", "public, max-age=3600"},
}

// CachingMiddleware sets Cache-Control on GET responses that the handler
// left without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		path := c.Path()
		for _, p := range cachePolicies {
			if strings.HasPrefix(path, p.prefix) {
				c.Set(fiber.HeaderCacheControl, p.value)
				break
			}
		}
		return err
	}
}
