package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/coloringbook-api/internal/utils"
)

// RateLimit limits requests per client IP and survey. Rejected requests get
// 429 with a Retry-After of one window.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}
	retryAfter := strconv.Itoa(int((window + time.Second - 1) / time.Second))

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			parts := []string{identifier, c.IP()}
			if survey := c.Params("name"); survey != "" {
				parts = append(parts, survey)
			}
			return strings.Join(parts, ":")
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return utils.SendErrorWithDetails(c, fiber.StatusTooManyRequests, "Error", "too many submissions, retry shortly")
		},
	})
}
