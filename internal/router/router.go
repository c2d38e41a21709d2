package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coloringbook-api/internal/config"
	"github.com/noah-isme/coloringbook-api/internal/handler"
	"github.com/noah-isme/coloringbook-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SurveyHandler *handler.SurveyHandler
	ExportHandler *handler.ExportHandler
	SeedHandler   *handler.SeedHandler
	HealthProbes  map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Browser client
	if deps.SurveyHandler != nil {
		deps.SurveyHandler.Register(api.Group("/surveys"))
	}

	// Researcher downloads and tooling
	admin := api.Group("/admin")
	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(admin)
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(admin.Group("/seed"))
	}
}
