package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coloringbook-api/internal/service"
	"github.com/noah-isme/coloringbook-api/internal/utils"
)

// ExportHandler exposes result downloads for researchers.
type ExportHandler struct {
	service service.ExportService
	guard   fiber.Handler
	logger  zerolog.Logger
}

// NewExportHandler constructs an export handler. guard runs before every
// download; nil disables it.
func NewExportHandler(service service.ExportService, guard fiber.Handler, logger zerolog.Logger) *ExportHandler {
	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &ExportHandler{
		service: service,
		guard:   guard,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/surveys/:name/results", h.guard, h.results)
	router.Get("/surveys/:name/results.csv", h.guard, h.resultsCSV)
	router.Get("/fills/raw.csv", h.guard, h.fillsCSV(false))
	router.Get("/fills/final.csv", h.guard, h.fillsCSV(true))
}

func (h *ExportHandler) results(c *fiber.Ctx) error {
	summaries, err := h.service.SurveyResults(c.UserContext(), c.Params("name"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "results retrieved", summaries)
}

func (h *ExportHandler) resultsCSV(c *fiber.Ctx) error {
	name := c.Params("name")
	body, err := h.service.SurveyResultsCSV(c.UserContext(), name)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendCSV(c, fmt.Sprintf("results_%s.csv", safeFilename(name)), body)
}

func (h *ExportHandler) fillsCSV(finalOnly bool) fiber.Handler {
	filename := "filldata_raw.csv"
	if finalOnly {
		filename = "filldata_final.csv"
	}

	return func(c *fiber.Ctx) error {
		body, err := h.service.FillsCSV(c.UserContext(), strings.TrimSpace(c.Query("survey")), finalOnly)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendCSV(c, filename, body)
	}
}

func (h *ExportHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "survey not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "export failed")
	}
}

// safeFilename keeps survey names usable inside a Content-Disposition header.
func safeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
