package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coloringbook-api/internal/config"
	"github.com/noah-isme/coloringbook-api/internal/handler"
)

func TestHealthCheckReportsDependencies(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "ColoringBook API", AppEnv: "test"}, map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "degraded", body.Data.Status)
	require.Equal(t, "ColoringBook API", body.Data.Service)
	require.Equal(t, map[string]string{"database": "up", "redis": "down"}, body.Data.Dependencies)
}

func TestHealthCheckWithoutProbes(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "ColoringBook API"}, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)

	var body struct {
		Data handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "ok", body.Data.Status)
	require.Empty(t, body.Data.Dependencies)
}
