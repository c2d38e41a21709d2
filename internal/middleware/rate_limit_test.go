package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coloringbook-api/internal/middleware"
)

func TestRateLimitRejectsBurst(t *testing.T) {
	app := fiber.New()
	app.Post("/submit", middleware.RateLimit("submit", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp := perform(t, app, http.MethodPost, "/submit")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := perform(t, app, http.MethodPost, "/submit")
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitScopesBySurvey(t *testing.T) {
	app := fiber.New()
	app.Post("/surveys/:name/submit", middleware.RateLimit("submit", 1, 90*time.Second), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := perform(t, app, http.MethodPost, "/surveys/pilot/submit")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = perform(t, app, http.MethodPost, "/surveys/pilot/submit")
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "90", resp.Header.Get(fiber.HeaderRetryAfter))

	resp = perform(t, app, http.MethodPost, "/surveys/followup/submit")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCorrelationIDPropagatesIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.CorrelationIDFromContext(c.UserContext()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "abc-123", resp.Header.Get("X-Correlation-ID"))
}

func TestCorrelationIDGeneratesWhenMissing(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp := perform(t, app, http.MethodGet, "/")
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}

func perform(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
