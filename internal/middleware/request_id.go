package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// RequestID is a Fiber middleware that tags every request with a
// correlation ID. An incoming X-Request-ID is kept; otherwise a fresh
// UUID is generated. The ID is stored in the request context and echoed
// on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}

		c.Locals("request_id", rid)
		c.Set(HeaderRequestID, rid)

		return c.Next()
	}
}
