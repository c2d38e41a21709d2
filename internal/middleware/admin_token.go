package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coloringbook-api/internal/utils"
)

// HeaderAdminToken carries the shared secret for researcher downloads.
const HeaderAdminToken = "X-Admin-Token"

// RequireToken rejects requests whose header does not match token with 403.
// An empty token leaves the routes open.
func RequireToken(header, token string) fiber.Handler {
	expected := []byte(strings.TrimSpace(token))

	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return c.Next()
		}
		provided := []byte(strings.TrimSpace(c.Get(header)))
		if subtle.ConstantTimeCompare(expected, provided) != 1 {
			return utils.SendErrorWithDetails(c, fiber.StatusForbidden, "Error", "invalid admin token")
		}
		return c.Next()
	}
}
