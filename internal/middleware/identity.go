package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CreatorIdentity injects the acting creator id into the request context.
// There is no authentication layer yet; the identity is a fixed configured
// value. Handlers read it from c.Locals, so swapping this middleware for a
// real auth layer later does not touch them.
func CreatorIdentity(creatorID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("creator_id", creatorID)
		return c.Next()
	}
}
